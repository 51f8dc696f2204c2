package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"goalboard/internal/domain"
	"goalboard/internal/engine"
	"goalboard/internal/wizard"
)

func sessionID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return wizard.DefaultSession
	}
	return v
}

// mergeJSON overlays the keys of patch onto dst.
func mergeJSON(dst any, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("invalid patch: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid patch: %w", err)
	}
	return nil
}

func badRequest(err error) huma.StatusError {
	return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
}

func registerInitiativeWizard(api huma.API, h *handler) {
	type sessionInput struct {
		Session string `header:"X-Wizard-Session" doc:"Wizard session id, defaults to 'default'"`
	}
	type viewOutput struct {
		Body InitiativeWizardResponse `json:"body"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-initiative-wizard",
		Method:      http.MethodGet,
		Path:        "/wizards/initiative",
		Summary:     "Current initiative wizard state",
	}, func(ctx context.Context, input *sessionInput) (*viewOutput, error) {
		id := sessionID(input.Session)
		out := &viewOutput{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			out.Body = initiativeView(id, s.Initiative)
			return nil
		})
		return out, err
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-initiative-wizard",
		Method:      http.MethodPatch,
		Path:        "/wizards/initiative",
		Summary:     "Update initiative wizard fields",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Session string `header:"X-Wizard-Session"`
		Body    InitiativeWizardPatch
	}) (*viewOutput, error) {
		id := sessionID(input.Session)
		out := &viewOutput{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			form := s.Initiative.Form()
			basics, details := form.Basics, form.Details
			if err := mergeJSON(&basics, input.Body.Basics); err != nil {
				return badRequest(err)
			}
			if err := mergeJSON(&details, input.Body.Details); err != nil {
				return badRequest(err)
			}
			details.ReviewFrequency = domain.NewCadence(details.ReviewFrequency.Strings()...)
			s.Initiative.EditBasics(func(b *wizard.InitiativeBasics) { *b = basics })
			s.Initiative.EditDetails(func(d *wizard.InitiativeDetails) { *d = details })
			for _, f := range input.Body.ToggleFrequency {
				s.Initiative.ToggleFrequency(domain.Frequency(f))
			}
			out.Body = initiativeView(id, s.Initiative)
			return nil
		})
		return out, err
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-initiative-review",
		Method:      http.MethodPatch,
		Path:        "/wizards/initiative/review",
		Summary:     "Update initiative review metadata",
	}, func(ctx context.Context, input *struct {
		Session string `header:"X-Wizard-Session"`
		Body    ReviewPatch
	}) (*viewOutput, error) {
		id := sessionID(input.Session)
		out := &viewOutput{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			s.Initiative.EditReview(input.Body.apply)
			out.Body = initiativeView(id, s.Initiative)
			return nil
		})
		return out, err
	})

	transitions := map[string]func(*wizard.InitiativeWizard) bool{
		"next": func(w *wizard.InitiativeWizard) bool { return h.engine.AdvanceInitiative(w) == nil },
		"back": func(w *wizard.InitiativeWizard) bool {
			w.Back()
			return true
		},
		"reset": func(w *wizard.InitiativeWizard) bool {
			if w.Step() != wizard.Step2 {
				return false
			}
			w.Reset()
			return true
		},
	}
	for _, action := range []string{"next", "back", "reset"} {
		apply := transitions[action]
		huma.Register(api, huma.Operation{
			OperationID: action + "-initiative-wizard",
			Method:      http.MethodPost,
			Path:        "/wizards/initiative/" + action,
			Summary:     "Initiative wizard " + action,
		}, func(ctx context.Context, input *sessionInput) (*struct {
			Body InitiativeTransitionResponse `json:"body"`
		}, error) {
			id := sessionID(input.Session)
			out := &struct {
				Body InitiativeTransitionResponse `json:"body"`
			}{}
			err := h.sessions.With(id, func(s *wizard.Session) error {
				out.Body.Accepted = apply(s.Initiative)
				out.Body.Wizard = initiativeView(id, s.Initiative)
				return nil
			})
			return out, err
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "submit-initiative-wizard",
		Method:      http.MethodPost,
		Path:        "/wizards/initiative/submit",
		Summary:     "Create the initiative from the wizard",
		Errors:      []int{http.StatusConflict},
	}, func(ctx context.Context, input *sessionInput) (*struct {
		Body InitiativeSubmitResponse `json:"body"`
	}, error) {
		id := sessionID(input.Session)
		out := &struct {
			Body InitiativeSubmitResponse `json:"body"`
		}{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			res, err := h.engine.SubmitInitiative(ctx, s.Initiative)
			switch {
			case errors.Is(err, wizard.ErrRefused):
			case err != nil:
				return handleError(err)
			default:
				out.Body.Accepted = true
				out.Body.Message = res.Message
				out.Body.Initiative = &res.Initiative
			}
			out.Body.Wizard = initiativeView(id, s.Initiative)
			return nil
		})
		return out, err
	})
}

func registerProjectWizard(api huma.API, h *handler) {
	type sessionInput struct {
		Session string `header:"X-Wizard-Session" doc:"Wizard session id, defaults to 'default'"`
	}
	type viewOutput struct {
		Body ProjectWizardResponse `json:"body"`
	}
	st := h.engine.Store

	huma.Register(api, huma.Operation{
		OperationID: "get-project-wizard",
		Method:      http.MethodGet,
		Path:        "/wizards/project",
		Summary:     "Current project wizard state",
	}, func(ctx context.Context, input *sessionInput) (*viewOutput, error) {
		id := sessionID(input.Session)
		out := &viewOutput{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			out.Body = projectView(id, s.Project, st)
			return nil
		})
		return out, err
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-project-wizard-options",
		Method:      http.MethodGet,
		Path:        "/wizards/project/options",
		Summary:     "Initiatives selectable as project parent",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body OptionList `json:"body"`
	}, error) {
		return &struct {
			Body OptionList `json:"body"`
		}{Body: OptionList{Items: wizard.InitiativeOptions(st.Initiatives())}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-project-wizard",
		Method:      http.MethodPatch,
		Path:        "/wizards/project",
		Summary:     "Update project wizard fields",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Session string `header:"X-Wizard-Session"`
		Body    ProjectWizardPatch
	}) (*viewOutput, error) {
		id := sessionID(input.Session)
		out := &viewOutput{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			details := s.Project.Form().Details
			if err := mergeJSON(&details, input.Body.Details); err != nil {
				return badRequest(err)
			}
			details.ReviewFrequency = domain.NewCadence(details.ReviewFrequency.Strings()...)
			if input.Body.InitiativeID != nil {
				// Refused past step 1: the parent stays as advanced.
				_ = s.Project.Select(*input.Body.InitiativeID)
			}
			s.Project.EditDetails(func(d *wizard.ProjectDetails) { *d = details })
			for _, f := range input.Body.ToggleFrequency {
				s.Project.ToggleFrequency(domain.Frequency(f))
			}
			out.Body = projectView(id, s.Project, st)
			return nil
		})
		return out, err
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-project-review",
		Method:      http.MethodPatch,
		Path:        "/wizards/project/review",
		Summary:     "Update project review metadata",
	}, func(ctx context.Context, input *struct {
		Session string `header:"X-Wizard-Session"`
		Body    ReviewPatch
	}) (*viewOutput, error) {
		id := sessionID(input.Session)
		out := &viewOutput{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			s.Project.EditReview(input.Body.apply)
			out.Body = projectView(id, s.Project, st)
			return nil
		})
		return out, err
	})

	transitions := map[string]func(*wizard.ProjectWizard) bool{
		"next": func(w *wizard.ProjectWizard) bool { return h.engine.AdvanceProject(w) == nil },
		"back": func(w *wizard.ProjectWizard) bool {
			w.Back()
			return true
		},
		"reset": func(w *wizard.ProjectWizard) bool {
			if w.Step() != wizard.Step2 {
				return false
			}
			w.Reset()
			return true
		},
	}
	for _, action := range []string{"next", "back", "reset"} {
		apply := transitions[action]
		huma.Register(api, huma.Operation{
			OperationID: action + "-project-wizard",
			Method:      http.MethodPost,
			Path:        "/wizards/project/" + action,
			Summary:     "Project wizard " + action,
		}, func(ctx context.Context, input *sessionInput) (*struct {
			Body ProjectTransitionResponse `json:"body"`
		}, error) {
			id := sessionID(input.Session)
			out := &struct {
				Body ProjectTransitionResponse `json:"body"`
			}{}
			err := h.sessions.With(id, func(s *wizard.Session) error {
				out.Body.Accepted = apply(s.Project)
				out.Body.Wizard = projectView(id, s.Project, st)
				return nil
			})
			return out, err
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "submit-project-wizard",
		Method:      http.MethodPost,
		Path:        "/wizards/project/submit",
		Summary:     "Create the project from the wizard",
		Errors:      []int{http.StatusConflict},
	}, func(ctx context.Context, input *sessionInput) (*struct {
		Body ProjectSubmitResponse `json:"body"`
	}, error) {
		id := sessionID(input.Session)
		out := &struct {
			Body ProjectSubmitResponse `json:"body"`
		}{}
		err := h.sessions.With(id, func(s *wizard.Session) error {
			res, err := h.engine.SubmitProject(ctx, s.Project)
			switch {
			case errors.Is(err, wizard.ErrRefused):
			case errors.Is(err, engine.ErrUnresolvedInitiative):
				out.Body.Reason = "unresolved_initiative"
			case err != nil:
				return handleError(err)
			default:
				out.Body.Accepted = true
				out.Body.Message = res.Message
				out.Body.Project = &res.Project
			}
			out.Body.Wizard = projectView(id, s.Project, st)
			return nil
		})
		return out, err
	})
}

func registerSessions(api huma.API, h *handler) {
	huma.Register(api, huma.Operation{
		OperationID:   "drop-wizard-session",
		Method:        http.MethodDelete,
		Path:          "/wizards/session",
		Summary:       "Forget both wizards of a session",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		Session string `header:"X-Wizard-Session"`
	}) (*struct{}, error) {
		h.sessions.Drop(sessionID(input.Session))
		return nil, nil
	})
}
