package server

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/notify"
)

// DrawResponse is the answer to POST /api/v1/shapes.
type DrawResponse struct {
	Status       string              `json:"status"`
	Shape        any                 `json:"shape,omitempty"`
	TrimmedBy    []string            `json:"trimmed_by,omitempty"`
	Notification notify.Notification `json:"notification"`
}

func (s *Server) listShapes(c fiber.Ctx) error {
	return c.JSON(s.svc.Export())
}

func (s *Server) drawShape(c fiber.Ctx) error {
	var req DrawRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	p, err := req.Proposal()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res := s.svc.Propose(c.Context(), p)
	body := DrawResponse{
		Status:       res.Status.String(),
		TrimmedBy:    res.TrimmedBy,
		Notification: notify.FromResult(res),
	}
	if res.Accepted() {
		body.Shape = res.Shape.Feature()
	}
	return c.Status(statusCode(res.Err())).JSON(body)
}

// statusCode maps a proposal outcome to an HTTP status.
func statusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusCreated
	case errors.Is(err, core.ErrInvalidGeometry):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusConflict
	}
}

func (s *Server) deleteShape(c fiber.Ctx) error {
	id := c.Params("id")
	if !s.svc.Delete(c.Context(), id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "shape not found", "id": id})
	}
	return c.JSON(fiber.Map{"id": id, "notification": notify.Deleted()})
}

func (s *Server) clearShapes(c fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "clearing the map requires confirm=true"})
	}
	n := s.svc.Clear(c.Context())
	return c.JSON(fiber.Map{"removed": n, "notification": notify.Cleared()})
}

func (s *Server) export(c fiber.Ctx) error {
	data, err := s.svc.ExportJSON()
	if err != nil {
		s.logger.Error("export failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}
	c.Attachment(ExportFileName)
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}

func (s *Server) status(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": s.version,
		"service": s.svc.State(),
	})
}
