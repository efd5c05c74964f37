package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/samandartukhtayev/rawsock-users/models"
	"github.com/samandartukhtayev/rawsock-users/repository"
	"github.com/samandartukhtayev/rawsock-users/router"
	"github.com/samandartukhtayev/rawsock-users/wire"
)

// Options tunes how failures are reported
type Options struct {
	// DistinctInputErrors answers malformed ids and bodies with 400
	// instead of 500
	DistinctInputErrors bool
}

// UserHandler implements the five user operations. Every call opens its own
// store session and closes it before returning.
type UserHandler struct {
	gateway  repository.Gateway
	validate *validator.Validate
	logger   *slog.Logger
	opts     Options
}

// NewUserHandler creates the handler set
func NewUserHandler(gateway repository.Gateway, logger *slog.Logger, opts Options) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		gateway:  gateway,
		validate: validator.New(),
		logger:   logger,
		opts:     opts,
	}
}

// Create inserts the user from the body and answers with the stored row
func (h *UserHandler) Create(ctx context.Context, req *wire.Request) wire.Response {
	payload, err := h.decodeUser(req.Body)
	if err != nil {
		return h.fail(ctx, "create", err)
	}

	store, err := h.gateway.Open(ctx)
	if err != nil {
		return h.fail(ctx, "create", infra(BodyInternalError, err))
	}
	defer h.close(ctx, store)

	id, err := store.Insert(ctx, *payload.Name, *payload.Email)
	if err != nil {
		return h.fail(ctx, "create", infra(BodyInternalError, err))
	}

	user, err := store.FindByID(ctx, id)
	if err != nil {
		return h.fail(ctx, "create", infra(BodyRetrieveCreated, err))
	}

	return h.encode(ctx, "create", user)
}

// ReadOne answers with the user named by the path id
func (h *UserHandler) ReadOne(ctx context.Context, req *wire.Request) wire.Response {
	id, err := parseID(pathID(req))
	if err != nil {
		return h.fail(ctx, "read_one", err)
	}

	store, err := h.gateway.Open(ctx)
	if err != nil {
		return h.fail(ctx, "read_one", infra(BodyInternalError, err))
	}
	defer h.close(ctx, store)

	user, err := store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return h.fail(ctx, "read_one", notFound(err))
		}
		return h.fail(ctx, "read_one", infra(BodyInternalError, err))
	}

	return h.encode(ctx, "read_one", user)
}

// ReadAll answers with every user as a JSON array
func (h *UserHandler) ReadAll(ctx context.Context, _ *wire.Request) wire.Response {
	store, err := h.gateway.Open(ctx)
	if err != nil {
		return h.fail(ctx, "read_all", infra(BodyInternalError, err))
	}
	defer h.close(ctx, store)

	users, err := store.FindAll(ctx)
	if err != nil {
		return h.fail(ctx, "read_all", infra(BodyInternalError, err))
	}
	if users == nil {
		users = []models.User{}
	}

	return h.encode(ctx, "read_all", users)
}

// Update overwrites name and email of the user named by the path id.
// It reports success whether or not a row matched.
func (h *UserHandler) Update(ctx context.Context, req *wire.Request) wire.Response {
	id, err := parseID(pathID(req))
	if err != nil {
		return h.fail(ctx, "update", err)
	}

	payload, err := h.decodeUser(req.Body)
	if err != nil {
		return h.fail(ctx, "update", err)
	}

	store, err := h.gateway.Open(ctx)
	if err != nil {
		return h.fail(ctx, "update", infra(BodyInternalError, err))
	}
	defer h.close(ctx, store)

	if _, err := store.Update(ctx, id, *payload.Name, *payload.Email); err != nil {
		return h.fail(ctx, "update", infra(BodyInternalError, err))
	}

	return wire.OK(BodyUserUpdated)
}

// Delete removes the user named by the path id
func (h *UserHandler) Delete(ctx context.Context, req *wire.Request) wire.Response {
	id, err := parseID(pathID(req))
	if err != nil {
		return h.fail(ctx, "delete", err)
	}

	store, err := h.gateway.Open(ctx)
	if err != nil {
		return h.fail(ctx, "delete", infra(BodyInternalError, err))
	}
	defer h.close(ctx, store)

	n, err := store.Delete(ctx, id)
	if err != nil {
		return h.fail(ctx, "delete", infra(BodyInternalError, err))
	}
	if n == 0 {
		return h.fail(ctx, "delete", notFound(fmt.Errorf("user %d: %w", id, repository.ErrUserNotFound)))
	}

	return wire.OK(BodyUserDeleted)
}

// pathID prefers the id captured by the router and falls back to the item
// segment of the raw path
func pathID(req *wire.Request) string {
	if id := req.Param("id"); id != "" {
		return id
	}
	return router.ExtractID(req.Path)
}

func parseID(raw string) (int, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, badRequest(fmt.Errorf("invalid user id %q: %w", raw, err))
	}
	return int(id), nil
}

func (h *UserHandler) decodeUser(body string) (*models.UserPayload, error) {
	var payload models.UserPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, badRequest(fmt.Errorf("invalid user body: %w", err))
	}
	if err := h.validate.Struct(&payload); err != nil {
		return nil, badRequest(fmt.Errorf("invalid user body: %w", err))
	}
	return &payload, nil
}

func (h *UserHandler) encode(ctx context.Context, op string, v any) wire.Response {
	body, err := json.Marshal(v)
	if err != nil {
		return h.fail(ctx, op, infra(BodyInternalError, err))
	}
	return wire.OK(string(body))
}

func (h *UserHandler) fail(ctx context.Context, op string, err error) wire.Response {
	level := slog.LevelError
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInfra {
		level = slog.LevelDebug
	}
	h.logger.Log(ctx, level, "request failed", "op", op, "error", err)

	return toResponse(err, h.opts.DistinctInputErrors)
}

func (h *UserHandler) close(ctx context.Context, store repository.Store) {
	if err := store.Close(); err != nil {
		h.logger.WarnContext(ctx, "failed to release connection", "error", err)
	}
}
