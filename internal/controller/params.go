package controller

import (
	"time"

	"spa-booking-be/internal/pkg/exceptions"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func paramID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, exceptions.NewValidation("invalid %s format", name)
	}
	return id, nil
}

// queryRange reads ?from&to as RFC3339 or a plain date. A plain-date "to" covers
// the whole day.
func queryRange(ctx *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := parseTime(ctx.Query("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, exceptions.NewValidation("invalid from: %v", err)
	}
	to, err := parseTime(ctx.Query("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, exceptions.NewValidation("invalid to: %v", err)
	}
	return from, to, nil
}

func parseTime(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
