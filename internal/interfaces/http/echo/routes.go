package echo

import (
	e "github.com/labstack/echo/v4"

	"github.com/mohammadpnp/content-inventory/internal/domain/identity"
)

func RegisterRoutes(server *e.Echo, auth e.MiddlewareFunc, importHandler *ImportHandler, streamHandler *StreamHandler, indexingHandler *IndexingHandler) {
	api := server.Group("/api/v1", auth)

	imports := api.Group("/imports", RequireRole(identity.RoleContributor))
	imports.POST("/content", importHandler.UploadRows)
	imports.POST("/content/sync", importHandler.ImportSync)
	imports.GET("/stream", streamHandler.Stream)

	indexing := api.Group("/indexing", RequireRole(identity.RoleAdmin))
	indexing.POST("/retry", indexingHandler.RetryFailed)
	indexing.POST("/resume", indexingHandler.Resume)
}
