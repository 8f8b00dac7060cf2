package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/soaklib/soak/hydrate"
	"github.com/soaklib/soak/mapfile"
	"github.com/soaklib/soak/metadata"
	"github.com/soaklib/soak/payload"
	"github.com/soaklib/soak/store"
)

// Handler serves entity records. Writes decode the body into a payload
// map and hydrate a fresh instance; reads extract stored instances back
// into maps.
type Handler struct {
	store    *store.Store
	registry *metadata.Registry
	defs     metadata.DefSource
}

// NewHandler builds a handler over the store. defs may be nil, in which
// case the definition dump is served from the registry alone.
func NewHandler(s *store.Store, reg *metadata.Registry, defs metadata.DefSource) *Handler {
	return &Handler{store: s, registry: reg, defs: defs}
}

func registerRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	// _defs before the :entity wildcards.
	api.Get("/_defs", h.Defs)

	api.Get("/:entity", h.List)
	api.Get("/:entity/:id", h.Get)
	api.Post("/:entity", h.Create)
	api.Delete("/:entity/:id", h.Delete)
}

// List handles GET /api/:entity.
func (h *Handler) List(c *fiber.Ctx) error {
	entity, err := h.resolveEntity(c)
	if err != nil {
		return err
	}

	records, err := h.store.FindAll(c.Context(), entity.Name)
	if err != nil {
		return fmt.Errorf("list %s: %w", entity.Name, err)
	}

	data := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out, err := h.store.Hydrator().Extract(record)
		if err != nil {
			return fmt.Errorf("extract %s: %w", entity.Name, err)
		}
		data = append(data, out)
	}

	return c.JSON(fiber.Map{
		"data": data,
		"meta": fiber.Map{"total": len(data)},
	})
}

// Get handles GET /api/:entity/:id.
func (h *Handler) Get(c *fiber.Ctx) error {
	entity, err := h.resolveEntity(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	record, err := h.store.Find(c.Context(), entity.Name, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError(entity.Name, id)
		}
		return fmt.Errorf("get %s/%s: %w", entity.Name, id, err)
	}

	out, err := h.store.Hydrator().Extract(record)
	if err != nil {
		return fmt.Errorf("extract %s: %w", entity.Name, err)
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create handles POST /api/:entity.
func (h *Handler) Create(c *fiber.Ctx) error {
	entity, err := h.resolveEntity(c)
	if err != nil {
		return err
	}

	body, err := decodePayload(c)
	if err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, err.Error())
	}

	record, err := h.store.Hydrator().HydrateNew(entity.Name, body)
	if err != nil {
		return hydrationError(entity.Name, err)
	}
	if err := h.store.Persist(c.Context(), record); err != nil {
		return fmt.Errorf("create %s: %w", entity.Name, err)
	}

	out, err := h.store.Hydrator().Extract(record)
	if err != nil {
		return fmt.Errorf("extract %s: %w", entity.Name, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": out})
}

// Delete handles DELETE /api/:entity/:id.
func (h *Handler) Delete(c *fiber.Ctx) error {
	entity, err := h.resolveEntity(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	record, err := h.store.Find(c.Context(), entity.Name, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError(entity.Name, id)
		}
		return fmt.Errorf("fetch %s/%s: %w", entity.Name, id, err)
	}

	if err := h.store.Delete(c.Context(), record); err != nil {
		return fmt.Errorf("delete %s/%s: %w", entity.Name, id, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Defs handles GET /api/_defs. The dump comes from the cache-backed
// mapping provider when one is configured and from the registry
// otherwise, rendered in the mapping document shape.
func (h *Handler) Defs(c *fiber.Ctx) error {
	defs, err := h.collectDefs()
	if err != nil {
		return fmt.Errorf("collect definitions: %w", err)
	}

	docs := make([]mapfile.Document, 0, len(defs))
	for _, def := range defs {
		docs = append(docs, documentFor(def))
	}
	return c.JSON(fiber.Map{"data": docs})
}

func (h *Handler) collectDefs() ([]*metadata.Def, error) {
	if h.defs == nil {
		entities := h.registry.Entities()
		defs := make([]*metadata.Def, len(entities))
		for i, entity := range entities {
			defs[i] = &entity.Def
		}
		return defs, nil
	}

	names, err := h.defs.Names()
	if err != nil {
		return nil, err
	}
	defs := make([]*metadata.Def, 0, len(names))
	for _, name := range names {
		def, err := h.defs.DefFor(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// resolveEntity returns the error rather than writing the response, so
// callers can rely on entity being non-nil whenever err is nil.
func (h *Handler) resolveEntity(c *fiber.Ctx) (*metadata.Entity, error) {
	name := c.Params("entity")
	entity, ok := h.registry.Describe(name)
	if !ok {
		return nil, UnknownEntityError(name)
	}
	return entity, nil
}

// decodePayload picks the body codec from the Content-Type header.
func decodePayload(c *fiber.Ctx) (map[string]any, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "application/msgpack") {
		return payload.Msgpack(c.Body())
	}
	return payload.JSON(c.Body())
}

// hydrationError maps hydration failures onto response errors. Anything
// unrecognized bubbles up to the app error handler as a 500.
func hydrationError(name string, err error) error {
	var notRegistered *metadata.NotRegisteredError
	if errors.As(err, &notRegistered) {
		return UnknownEntityError(notRegistered.Name)
	}
	var notConstructible *metadata.NotConstructibleError
	if errors.As(err, &notConstructible) {
		return NewAppError("NOT_CONSTRUCTIBLE", 422, err.Error())
	}
	var depth *hydrate.DepthError
	if errors.As(err, &depth) {
		return NewAppError("PAYLOAD_TOO_DEEP", 422, err.Error())
	}
	return fmt.Errorf("hydrate %s: %w", name, err)
}

// documentFor renders a definition record in the mapping document shape.
func documentFor(def *metadata.Def) mapfile.Document {
	doc := mapfile.Document{Entity: def.Name, Table: def.Table}
	for _, f := range def.Fields {
		doc.Fields = append(doc.Fields, mapfile.FieldDoc{
			Name:     f.Name,
			Kind:     string(f.Kind),
			Key:      f.Key,
			Nullable: f.Nullable,
			Unique:   f.Unique,
		})
	}
	for _, a := range def.Assocs {
		doc.Associations = append(doc.Associations, mapfile.AssocDoc{
			Name:   a.Name,
			Many:   a.ToMany,
			Target: a.Target,
		})
	}
	return doc
}
