package gateway

import (
	"testing"

	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Producto no encontrado"}`, "Producto no encontrado"},
		{"structured detail", `{"detail":[{"loc":["body","cantidad"],"msg":"field required"}]}`, `[{"loc":["body","cantidad"],"msg":"field required"}]`},
		{"null detail", `{"detail":null}`, ""},
		{"no detail", `{"error":"boom"}`, ""},
		{"not json", `<html>bad gateway</html>`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	require.Equal(t, "Stock insuficiente", newAPIError(400, []byte(`{"detail":"Stock insuficiente"}`)).Error())
	require.Equal(t, "request failed: 502 Bad Gateway", newAPIError(502, []byte("oops")).Error())
	require.Equal(t, "request failed: 599", newAPIError(599, nil).Error())
}

func TestAPIErrorIs(t *testing.T) {
	require.ErrorIs(t, newAPIError(422, nil), apperrors.ErrInvalidRequest)
	require.ErrorIs(t, newAPIError(400, nil), apperrors.ErrInvalidRequest)
	require.NotErrorIs(t, newAPIError(500, nil), apperrors.ErrInternal)

	expired := newAPIError(401, []byte(`{"detail":"No autenticado"}`))
	require.ErrorIs(t, expired, apperrors.ErrUnauthorized)
	require.NotErrorIs(t, expired, apperrors.ErrInvalidCredentials)
}
