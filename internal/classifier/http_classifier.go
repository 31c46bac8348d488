package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"emospray/internal/providers"
	"emospray/internal/structures"
)

const analyzePath = "/analyze"

var analyzeActions = []string{"emotion", "age", "gender"}

type analyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	EnforceDetection bool     `json:"enforce_detection"`
}

type analyzeResult struct {
	Emotion         map[string]float64 `json:"emotion"`
	DominantEmotion string             `json:"dominant_emotion"`
	Age             float64            `json:"age"`
	DominantGender  string             `json:"dominant_gender"`
}

type analyzeResponse struct {
	Results []analyzeResult `json:"results"`
}

type analyzeError struct {
	Error     string `json:"error"`
	Exception string `json:"exception"`
}

func (e *analyzeError) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Exception
}

// HTTPClassifier talks to a DeepFace-compatible analysis server.
type HTTPClassifier struct {
	client        *resty.Client
	logger        providers.Logger
	minConfidence float64
}

func NewHTTPClassifier(conf *structures.Config, logger providers.Logger) Classifier {
	client := resty.New().
		SetBaseURL(strings.TrimRight(conf.Classifier.URL, "/")).
		SetTimeout(conf.Classifier.Timeout).
		SetRetryCount(conf.Classifier.RetryCount).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return false
			}
			switch r.StatusCode() {
			case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return true
			}
			return false
		})

	return &HTTPClassifier{
		client:        client,
		logger:        logger,
		minConfidence: conf.Classifier.MinConfidence,
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) (*Classification, error) {
	payload := analyzeRequest{
		Img:              toDataURL(image),
		Actions:          analyzeActions,
		EnforceDetection: true,
	}

	var result analyzeResponse
	var failure analyzeError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&failure).
		Post(analyzePath)
	if err != nil {
		return nil, &ClassifierError{Reason: "request failed", Err: err}
	}

	if resp.IsError() {
		msg := failure.message()
		if isNoFaceMessage(msg) {
			return nil, ErrNoFace
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		c.logger.Warnf(providers.TypeApp, "Classifier responded %d: %s", resp.StatusCode(), msg)
		return nil, &ClassifierError{Status: resp.StatusCode(), Reason: msg}
	}

	if len(result.Results) == 0 {
		return nil, ErrNoFace
	}

	face := result.Results[0]
	emotions := make(map[string]float64, len(face.Emotion))
	for label, value := range face.Emotion {
		if value > c.minConfidence {
			emotions[label] = value
		}
	}

	c.logger.Debugf(providers.TypeApp, "Classifier found %d face(s), dominant emotion %s", len(result.Results), face.DominantEmotion)

	return &Classification{
		Emotions:        emotions,
		DominantEmotion: face.DominantEmotion,
		Age:             face.Age,
		Gender:          face.DominantGender,
	}, nil
}

func toDataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))
}

func isNoFaceMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "face could not be detected") || strings.Contains(msg, "no face")
}
