package internal

import (
	"net/http"

	"emospray/internal/controllers"
	"emospray/internal/providers"
)

func InitRoutes(deviceController *controllers.DeviceController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/upload-photo", http.HandlerFunc(deviceController.UploadPhoto))
	routers.Post("/upload-manual", http.HandlerFunc(deviceController.UploadManual))
	routers.Get("/device", http.HandlerFunc(deviceController.GetDevice))
	return routers
}
