package rulerservice

import (
	"context"
	"fmt"
	"strconv"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulerdb "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

// RegisterCaller runs before every command.
func (s *RulerService) RegisterCaller(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[Registration, error], error) {
	registerTx := func(ctx context.Context, db tablestore.Accessor) (results.OperationResult[Registration, error], error) {
		return s.registerCallerLogic(ctx, db, inv)
	}

	return withTelemetry(s, ctx, "RegisterCaller", strconv.FormatInt(inv.Caller.ID, 10), func(ctx context.Context) (results.OperationResult[Registration, error], error) {
		return runInTx(s, ctx, registerTx)
	})
}

func (s *RulerService) registerCallerLogic(ctx context.Context, db tablestore.Accessor, inv rulerdomain.Invocation) (results.OperationResult[Registration, error], error) {
	c := inv.Caller
	var reg Registration

	res, err := s.repo.EnsureUser(ctx, db, rulerdb.User{
		ID:        c.ID,
		FirstName: c.FirstName,
		Username:  c.Username,
		URL:       c.URL,
	})
	if err != nil {
		return results.OperationResult[Registration, error]{}, err
	}
	reg.UserCreated = res == tablestore.Inserted

	if !inv.Chat.Type.IsGroup() {
		return results.SuccessResult[Registration, error](reg), nil
	}
	reg.InGroup = true

	if err := s.repo.EnsureGroupTable(ctx, db, inv.Chat.ID); err != nil {
		return results.OperationResult[Registration, error]{}, err
	}

	res, err = s.repo.EnsurePlayer(ctx, db, inv.Chat.ID, rulerdb.Player{
		ID:        c.ID,
		FirstName: c.FirstName,
		Username:  c.Username,
		URL:       c.URL,
	})
	if err != nil {
		return results.OperationResult[Registration, error]{}, fmt.Errorf("group %d: %w", inv.Chat.ID, err)
	}
	reg.PlayerCreated = res == tablestore.Inserted

	if reg.UserCreated || reg.PlayerCreated {
		s.logger.InfoContext(ctx, "Registered caller",
			attr.Int64("user_id", c.ID),
			attr.Int64("chat_id", inv.Chat.ID),
			attr.Any("registration", reg),
		)
	}

	return results.SuccessResult[Registration, error](reg), nil
}
