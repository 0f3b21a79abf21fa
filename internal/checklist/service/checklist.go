package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	"carecompliance/internal/checklist/models"
	"carecompliance/internal/notify"
	"carecompliance/internal/platform/memtx"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/email"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

// SendRequest names the resident, template and guardian for a new link.
type SendRequest struct {
	ResidentID    string
	TemplateID    string
	GuardianEmail string
}

// SendResult carries the link and the outcome of the invitation email. A
// failed delivery does not undo the send.
type SendResult struct {
	Link     *models.Link
	Delivery notify.Result
}

// SendChecklist creates a link and emails the invitation.
func (s *Service) SendChecklist(ctx context.Context, actorID string, req SendRequest) (*SendResult, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin, access.RoleSupervisor); err != nil {
		return nil, err
	}
	location, err := s.residentLocation(ctx, strings.TrimSpace(req.ResidentID))
	if err != nil {
		return nil, err
	}
	if err := access.RequireLocation(role, location); err != nil {
		return nil, err
	}
	guardian, err := email.Normalize(req.GuardianEmail)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(ctx, strings.TrimSpace(req.TemplateID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown checklist template")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checklist template")
	}

	now := requestcontext.Now(ctx)
	link, err := models.NewLink(strings.TrimSpace(req.ResidentID), tpl.ID, guardian, now, s.linkTTL)
	if err != nil {
		return nil, err
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, wrapStoreErr(err, "save checklist link")
	}

	delivery := s.invite(ctx, link, tpl)
	s.logAudit(ctx, role.SubjectID, audit.EventChecklistSent, location, map[string]string{
		"link_id":     link.ID.String(),
		"template_id": tpl.ID,
		"delivered":   strconv.FormatBool(delivery.OK()),
	})
	return &SendResult{Link: link, Delivery: delivery}, nil
}

// ResendChecklist extends an open or expired link and emails it again. The
// token does not change.
func (s *Service) ResendChecklist(ctx context.Context, actorID string, linkID uuid.UUID) (*SendResult, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin, access.RoleSupervisor); err != nil {
		return nil, err
	}
	current, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, wrapStoreErr(err, "load checklist link")
	}
	location, err := s.residentLocation(ctx, current.ResidentID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireLocation(role, location); err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "checklist not found")
	}
	tpl, err := s.templates.Get(ctx, current.TemplateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checklist template")
	}

	now := requestcontext.Now(ctx)
	var link *models.Link
	txCtx := memtx.WithShardKey(ctx, "checklist:"+linkID.String())
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		var err error
		link, err = s.links.Execute(txCtx, linkID,
			func(l *models.Link) error { return l.CanResend() },
			func(l *models.Link) { l.ApplyResend(now, s.linkTTL) })
		return err
	})
	if err != nil {
		return nil, wrapStoreErr(err, "resend checklist")
	}

	delivery := s.invite(ctx, link, tpl)
	s.logAudit(ctx, role.SubjectID, audit.EventChecklistResent, location, map[string]string{
		"link_id":   link.ID.String(),
		"delivered": strconv.FormatBool(delivery.OK()),
	})
	return &SendResult{Link: link, Delivery: delivery}, nil
}

// OpenChecklist returns the link and its template for the guardian form.
// It is unauthenticated; the token is the credential.
func (s *Service) OpenChecklist(ctx context.Context, token string) (*models.Link, *models.Template, error) {
	link, err := s.links.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, nil, wrapStoreErr(err, "load checklist link")
	}
	tpl, err := s.templates.Get(ctx, link.TemplateID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checklist template")
	}
	return link, tpl, nil
}

// SubmitChecklist records the guardian's responses. It is unauthenticated.
func (s *Service) SubmitChecklist(ctx context.Context, token string, responses []models.Response) (*models.Link, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "checklist not found")
	}
	current, err := s.links.FindByToken(ctx, token)
	if err != nil {
		return nil, wrapStoreErr(err, "load checklist link")
	}
	now := requestcontext.Now(ctx)
	if err := current.CanSubmit(now); err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(ctx, current.TemplateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checklist template")
	}
	accepted, err := models.ValidateResponses(tpl, responses)
	if err != nil {
		return nil, err
	}

	var link *models.Link
	txCtx := memtx.WithShardKey(ctx, "checklist:"+current.ID.String())
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		var err error
		link, err = s.links.Execute(txCtx, current.ID,
			func(l *models.Link) error { return l.CanSubmit(now) },
			func(l *models.Link) { l.ApplySubmit(accepted, now) })
		return err
	})
	if err != nil {
		return nil, wrapStoreErr(err, "submit checklist")
	}

	location := ""
	if subj, err := s.subjects.Get(ctx, link.ResidentID); err == nil {
		location = subj.Location
	}
	s.logAudit(ctx, "", audit.EventChecklistSubmitted, location, map[string]string{
		"link_id":   link.ID.String(),
		"responses": strconv.Itoa(len(accepted)),
	})
	return link, nil
}

// ListTemplates returns every template to any resolved role.
func (s *Service) ListTemplates(ctx context.Context, actorID string) ([]*models.Template, error) {
	if _, err := s.policy.Resolve(ctx, actorID); err != nil {
		return nil, err
	}
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checklist templates")
	}
	return templates, nil
}

func (s *Service) invite(ctx context.Context, link *models.Link, tpl *models.Template) notify.Result {
	msg, err := notify.RenderChecklistInvite(link.GuardianEmail, notify.ChecklistInviteData{
		TemplateName: tpl.Name,
		Link:         s.publicURL + "/checklists/" + link.Token,
		ExpiresAt:    link.ExpiresAt,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "checklist invite render failed",
			"request_id", requestcontext.RequestID(ctx),
			"link_id", link.ID,
			"error", err,
		)
		return notify.Result{To: link.GuardianEmail, Err: dErrors.Wrap(err, dErrors.CodeInternal, "failed to render invitation")}
	}
	return s.notifier.DispatchOne(ctx, msg)
}
