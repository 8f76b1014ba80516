package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	OutcomeSuccess   = "success"
	OutcomeCancelled = "cancelled"
)

var ErrMissingOrderCode = errors.New("return url has no orderCode")

// Result mirrors the reconcile endpoint response.
type Result struct {
	HTTPStatus        int    `json:"-"`
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AppointmentStatus string `json:"appointmentStatus,omitempty"`
	DuplicateCallback bool   `json:"duplicateCallback,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ReturnPage is what the browser lands on after the gateway redirect. However many
// times Confirm runs (re-renders, double mounts), the reconcile endpoint is hit once.
type ReturnPage struct {
	endpoint  string
	orderCode string
	outcome   string
	timeout   time.Duration

	once   sync.Once
	calls  int
	result *Result
	err    error
}

// NewReturnPage parses the landing query (?orderCode=X[&status=CANCELLED]).
func NewReturnPage(apiBase, rawQuery string) (*ReturnPage, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return nil, err
	}
	orderCode := q.Get("orderCode")
	if orderCode == "" {
		return nil, ErrMissingOrderCode
	}

	outcome := OutcomeSuccess
	if strings.EqualFold(q.Get("status"), "CANCELLED") {
		outcome = OutcomeCancelled
	}

	return &ReturnPage{
		endpoint:  strings.TrimRight(apiBase, "/") + "/api/payment/reconcile",
		orderCode: orderCode,
		outcome:   outcome,
		timeout:   10 * time.Second,
	}, nil
}

func (p *ReturnPage) OrderCode() string { return p.orderCode }
func (p *ReturnPage) Outcome() string   { return p.outcome }

// Calls reports how many requests were actually sent.
func (p *ReturnPage) Calls() int { return p.calls }

func (p *ReturnPage) Confirm() (*Result, error) {
	p.once.Do(func() {
		p.calls++
		p.result, p.err = p.post()
	})
	return p.result, p.err
}

func (p *ReturnPage) post() (*Result, error) {
	agent := fiber.Post(p.endpoint).
		Timeout(p.timeout).
		JSON(fiber.Map{"orderCode": p.orderCode, "status": p.outcome})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("reconcile request failed: %w", errs[0])
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode reconcile response: %w", err)
	}

	res := &Result{HTTPStatus: code, Success: env.Success, Message: env.Message}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, res); err != nil {
			return nil, fmt.Errorf("decode reconcile data: %w", err)
		}
		res.Success = env.Success
		res.Message = env.Message
	}
	return res, nil
}
