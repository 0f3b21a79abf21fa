package service

import (
	"context"
	"strconv"

	"carecompliance/internal/access"
	"carecompliance/internal/notify"
	"carecompliance/internal/overview/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/requestcontext"
)

type reminderBatch struct {
	subjectID string
	email     string
	items     []notify.ReminderItem
}

// SendReminders emails every recipient with access to the referenced items.
// Refs the actor cannot see are reported as not found. One failed delivery
// never stops the batch.
func (s *Service) SendReminders(ctx context.Context, actorID string, refs []domain.ItemRef) (*models.ReminderSummary, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin, access.RoleSupervisor); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one item is required")
	}

	items, err := s.overviewFor(ctx, role)
	if err != nil {
		return nil, err
	}
	resolved, notFound := resolveRefs(items, refs)

	summary := &models.ReminderSummary{
		Requested:  len(refs),
		Resolved:   len(resolved),
		NotFound:   notFound,
		Recipients: []models.RecipientResult{},
	}

	batches, err := s.groupByRecipient(ctx, resolved)
	if err != nil {
		return nil, err
	}

	msgs := make([]notify.Message, 0, len(batches))
	for _, b := range batches {
		msg, err := notify.RenderReminder(b.email, notify.ReminderData{Items: b.items})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	results := s.dispatcher.Dispatch(ctx, msgs)
	for i, res := range results {
		rr := models.RecipientResult{SubjectID: batches[i].subjectID, Delivered: res.OK(), MessageID: res.MessageID}
		if res.OK() {
			summary.Sent++
		} else {
			summary.Failed++
			rr.Error = "delivery failed"
		}
		summary.Recipients = append(summary.Recipients, rr)
	}

	s.logger.InfoContext(ctx, "reminders sent",
		"request_id", requestcontext.RequestID(ctx),
		"requested", summary.Requested,
		"resolved", summary.Resolved,
		"sent", summary.Sent,
		"failed", summary.Failed,
	)
	s.logAudit(ctx, role.SubjectID, audit.EventRemindersSent, map[string]string{
		"requested": strconv.Itoa(summary.Requested),
		"resolved":  strconv.Itoa(summary.Resolved),
		"sent":      strconv.Itoa(summary.Sent),
		"failed":    strconv.Itoa(summary.Failed),
	})
	return summary, nil
}

// resolveRefs matches refs against visible items. Duplicate refs resolve once.
func resolveRefs(items []models.Item, refs []domain.ItemRef) ([]models.Item, []domain.ItemRef) {
	byRef := make(map[domain.ItemRef]models.Item, len(items))
	for _, it := range items {
		byRef[it.Ref] = it
	}
	seen := make(map[domain.ItemRef]bool, len(refs))
	resolved := make([]models.Item, 0, len(refs))
	notFound := []domain.ItemRef{}
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		it, ok := byRef[ref]
		if !ok {
			notFound = append(notFound, ref)
			continue
		}
		resolved = append(resolved, it)
	}
	return resolved, notFound
}

// groupByRecipient builds one batch per recipient, in first-seen order.
func (s *Service) groupByRecipient(ctx context.Context, items []models.Item) ([]*reminderBatch, error) {
	recipientsByLocation := make(map[string][]*access.Role)
	index := make(map[string]*reminderBatch)
	var batches []*reminderBatch

	for _, it := range items {
		recipients, ok := recipientsByLocation[it.Location]
		if !ok {
			var err error
			recipients, err = s.policy.Recipients(ctx, it.Location)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve reminder recipients")
			}
			recipientsByLocation[it.Location] = recipients
		}
		for _, r := range recipients {
			b, ok := index[r.SubjectID]
			if !ok {
				b = &reminderBatch{subjectID: r.SubjectID, email: r.Email}
				index[r.SubjectID] = b
				batches = append(batches, b)
			}
			b.items = append(b.items, notify.ReminderItem{
				Type:         string(it.Type),
				Location:     it.Location,
				DueAt:        it.DueDate,
				Status:       string(it.Status),
				DaysUntilDue: it.DaysUntilDue,
			})
		}
	}
	return batches, nil
}
