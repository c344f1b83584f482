package apiv1

import (
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/require"
)

const openAPIFile = "../../../public/docs/v1/openapi.yml"

func loadOpenAPIDocument(t *testing.T) *openapi3.T {
	t.Helper()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(openAPIFile)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	return doc
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc := loadOpenAPIDocument(t)

	require.Equal(t, "PlanLedger API", doc.Info.Title)
	require.NotEmpty(t, doc.Paths.Map())
}

// Every route RegisterHandlers installs must be documented. The doc paths are
// relative to the /api/v1 server entry.
func TestOpenAPIDocumentCoversRoutes(t *testing.T) {
	doc := loadOpenAPIDocument(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/ping"},
		{http.MethodPost, "/auth/register"},
		{http.MethodGet, "/auth/activate"},
		{http.MethodPost, "/auth/login"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/profile/api-key"},
		{http.MethodDelete, "/profile/api-key"},
		{http.MethodPatch, "/profile/settings"},
		{http.MethodGet, "/clients"},
		{http.MethodPost, "/clients"},
		{http.MethodGet, "/clients/{uuid}"},
		{http.MethodPatch, "/clients/{uuid}"},
		{http.MethodPost, "/clients/{uuid}/archive"},
		{http.MethodGet, "/catalog"},
		{http.MethodGet, "/catalog/search"},
		{http.MethodGet, "/catalog/{code}"},
		{http.MethodPost, "/plans"},
		{http.MethodGet, "/plans/{uuid}"},
		{http.MethodPatch, "/plans/{uuid}"},
		{http.MethodDelete, "/plans/{uuid}"},
		{http.MethodPost, "/plans/{uuid}/activate"},
		{http.MethodGet, "/plans/{uuid}/summary"},
		{http.MethodGet, "/plans/{uuid}/line-items"},
		{http.MethodPost, "/plans/{uuid}/line-items"},
		{http.MethodPost, "/plans/{uuid}/preview"},
		{http.MethodPatch, "/line-items/{id}"},
		{http.MethodDelete, "/line-items/{id}"},
		{http.MethodPost, "/line-items/{id}/usage"},
		{http.MethodGet, "/integration/plans/{uuid}/summary"},
		{http.MethodPost, "/integration/line-items/{id}/usage"},
		{http.MethodGet, "/admin/stats"},
		{http.MethodGet, "/admin/users"},
		{http.MethodPost, "/admin/users"},
		{http.MethodPatch, "/admin/users/{id}"},
		{http.MethodDelete, "/admin/users/{id}"},
		{http.MethodPost, "/admin/users/{id}/resend-activation"},
		{http.MethodPost, "/admin/notify-expiring"},
		{http.MethodGet, "/admin/cache"},
		{http.MethodDelete, "/admin/cache/{key}"},
		{http.MethodPost, "/admin/cache/bulk-delete"},
	}

	for _, route := range routes {
		route := route
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			item := doc.Paths.Find(route.path)
			require.NotNil(t, item, "path %s is not documented", route.path)
			require.NotNil(t, item.GetOperation(route.method), "%s %s is not documented", route.method, route.path)
		})
	}
}
