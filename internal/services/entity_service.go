// Package services provides business logic and orchestration between
// storage, messaging, and the derived-view engine.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"freelance/internal/amqp"
	"freelance/internal/core"
	"freelance/internal/derive"
	"freelance/internal/storage"
)

// EntityService orchestrates entity writes across SQLite and AMQP.
// Every successful write publishes a change message; a missing or
// unreachable broker never fails the write.
type EntityService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewEntityService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *EntityService {
	return &EntityService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Repo exposes the underlying repository for read paths.
func (s *EntityService) Repo() *storage.SQLiteRepository {
	return s.storage
}

func (s *EntityService) CreateClient(ctx context.Context, c core.Client) (core.Client, error) {
	created, err := s.storage.CreateClient(ctx, c)
	if err != nil {
		return core.Client{}, fmt.Errorf("save client: %w", err)
	}
	s.publishChange(ctx, amqp.EntityClient, created.ID, amqp.OpCreate)
	return created, nil
}

func (s *EntityService) UpdateClient(ctx context.Context, c core.Client) error {
	if err := s.storage.UpdateClient(ctx, c); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityClient, c.ID, amqp.OpUpdate)
	return nil
}

func (s *EntityService) DeleteClient(ctx context.Context, id string) error {
	if err := s.storage.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityClient, id, amqp.OpDelete)
	return nil
}

func (s *EntityService) CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	created, err := s.storage.CreateInvoice(ctx, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}
	s.publishChange(ctx, amqp.EntityInvoice, created.ID, amqp.OpCreate)
	return created, nil
}

func (s *EntityService) UpdateInvoice(ctx context.Context, inv core.Invoice) error {
	if err := s.storage.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityInvoice, inv.ID, amqp.OpUpdate)
	return nil
}

func (s *EntityService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.storage.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityInvoice, id, amqp.OpDelete)
	return nil
}

func (s *EntityService) CreateMeeting(ctx context.Context, m core.Meeting) (core.Meeting, error) {
	created, err := s.storage.CreateMeeting(ctx, m)
	if err != nil {
		return core.Meeting{}, fmt.Errorf("save meeting: %w", err)
	}
	s.publishChange(ctx, amqp.EntityMeeting, created.ID, amqp.OpCreate)
	return created, nil
}

func (s *EntityService) UpdateMeeting(ctx context.Context, m core.Meeting) error {
	if err := s.storage.UpdateMeeting(ctx, m); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityMeeting, m.ID, amqp.OpUpdate)
	return nil
}

func (s *EntityService) DeleteMeeting(ctx context.Context, id string) error {
	if err := s.storage.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityMeeting, id, amqp.OpDelete)
	return nil
}

func (s *EntityService) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	created, err := s.storage.CreateProject(ctx, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("save project: %w", err)
	}
	s.publishChange(ctx, amqp.EntityProject, created.ID, amqp.OpCreate)
	return created, nil
}

func (s *EntityService) UpdateProject(ctx context.Context, p core.Project) error {
	if err := s.storage.UpdateProject(ctx, p); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityProject, p.ID, amqp.OpUpdate)
	return nil
}

func (s *EntityService) DeleteProject(ctx context.Context, id string) error {
	if err := s.storage.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.EntityProject, id, amqp.OpDelete)
	return nil
}

// MoveProjectToLane drops a project into a board lane: it loads the
// project, computes the status/progress rewrite for the target lane,
// and persists only that pair.
func (s *EntityService) MoveProjectToLane(ctx context.Context, id string, lane derive.Lane) (derive.LaneMove, error) {
	project, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return derive.LaneMove{}, err
	}

	move, err := derive.Rewrite(lane, project)
	if err != nil {
		return derive.LaneMove{}, err
	}

	if err := s.storage.UpdateProjectStanding(ctx, id, move.Status, move.Progress); err != nil {
		return derive.LaneMove{}, fmt.Errorf("persist lane move: %w", err)
	}

	slog.InfoContext(ctx, "Project moved",
		"id", id, "lane", lane, "status", move.Status, "progress", move.Progress)

	s.publishChange(ctx, amqp.EntityProject, id, amqp.OpUpdate)
	return move, nil
}

func (s *EntityService) publishChange(ctx context.Context, entity, id, op string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message",
			"entity", entity, "id", id)
		return
	}
	if err := s.amqpClient.PublishChange(ctx, amqp.NewChangeMessage(entity, id, op)); err != nil {
		// The write already succeeded; the broker catches up later.
		slog.ErrorContext(ctx, "Failed to publish change message",
			"entity", entity, "id", id, "op", op, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *EntityService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entity service: %v", errs)
	}

	return nil
}
