package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/models"
)

type rpcCaller interface {
	Rpc(name string, count string, rpcBody interface{}) string
}

// SupabaseProcedures calls the clone_previous_month and has_role database
// functions over PostgREST.
type SupabaseProcedures struct {
	client rpcCaller
}

func NewSupabaseProcedures(client *supabase.Client) *SupabaseProcedures {
	return &SupabaseProcedures{client: client}
}

func (p *SupabaseProcedures) CloneMonth(ctx context.Context, year, month int) (uuid.UUID, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	out := p.client.Rpc("clone_previous_month", "", map[string]interface{}{
		"_user_id": userID.String(),
		"_year":    year,
		"_month":   month,
	})

	var id uuid.UUID
	if err := json.Unmarshal([]byte(out), &id); err != nil {
		return uuid.Nil, rpcError("clone_previous_month", out)
	}
	return id, nil
}

func (p *SupabaseProcedures) HasRole(ctx context.Context, role models.AppRole) (bool, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return false, err
	}
	out := p.client.Rpc("has_role", "", map[string]interface{}{
		"_user_id": userID.String(),
		"_role":    string(role),
	})

	var ok bool
	if err := json.Unmarshal([]byte(out), &ok); err != nil {
		return false, rpcError("has_role", out)
	}
	return ok, nil
}

// rpcError maps a PostgREST error body to a sentinel. The body carries the
// raised message, which the database functions phrase consistently.
func rpcError(name, body string) error {
	var pgErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal([]byte(body), &pgErr)

	msg := strings.ToLower(pgErr.Message)
	switch {
	case strings.Contains(msg, "closed"):
		return fmt.Errorf("%s: %w", name, apperr.ErrMonthClosed)
	case pgErr.Code == "23505" || strings.Contains(msg, "already"):
		return fmt.Errorf("%s: %w", name, apperr.ErrConflict)
	case pgErr.Code == "42501":
		return fmt.Errorf("%s: %w", name, apperr.ErrForbidden)
	}
	return fmt.Errorf("%s: unexpected response %q", name, body)
}
