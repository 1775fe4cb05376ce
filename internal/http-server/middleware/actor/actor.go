// Package actor resolves the caller from gateway headers. Authentication
// happens upstream; this service trusts the headers it is given.
package actor

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/render"
)

const (
	HeaderPersonID = "X-Person-ID"
	HeaderRole     = "X-Person-Role"
)

type ctxKey struct{}

// Require rejects requests without a valid person id with 401.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderPersonID)), 10, 64)
		if err != nil || id <= 0 {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "identificação ausente"))
			return
		}

		role := model.RoleUser
		if strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderRole)), string(model.RoleAdmin)) {
			role = model.RoleAdmin
		}

		ctx := WithActor(r.Context(), model.Actor{PersonID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithActor(ctx context.Context, a model.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// From returns the actor set by Require. The zero Actor has no rights.
func From(ctx context.Context) model.Actor {
	a, _ := ctx.Value(ctxKey{}).(model.Actor)
	return a
}
