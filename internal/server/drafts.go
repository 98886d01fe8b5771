package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"ledgerdesk/internal/domain"
	"ledgerdesk/internal/store"
	"ledgerdesk/internal/validate"
	"ledgerdesk/internal/wizard"
)

type draftPath struct {
	DraftID string `path:"draft_id"`
}

type draftItemPath struct {
	DraftID string `path:"draft_id"`
	ItemID  string `path:"item_id"`
}

func registerDrafts(api huma.API, cfg Config, sessions *sessionRegistry) {
	places := cfg.Cfg.Rounding.Places

	respond := func(m *wizard.Machine) DraftResponse {
		return draftResponse(m.Draft(), m.Validation(), places)
	}

	lookup := func(id string) (*session, huma.StatusError) {
		s, ok := sessions.get(id)
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "draft "+id+" not found", nil)
		}
		return s, nil
	}

	// withDraft serializes access per session: the lock is held from mutation
	// through response building so concurrent requests against the same draft
	// never interleave inside the machine.
	withDraft := func(id string, fn func(m *wizard.Machine) error) (DraftResponse, huma.StatusError) {
		s, apiErr := lookup(id)
		if apiErr != nil {
			return DraftResponse{}, apiErr
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := fn(s.machine); err != nil {
			return DraftResponse{}, handleError(err)
		}
		return respond(s.machine), nil
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-draft",
		Method:        http.MethodPost,
		Path:          "/drafts",
		Summary:       "Open a draft session",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateDraftRequest `json:"body"`
	}) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		m, err := wizard.New(domain.Kind(input.Body.Kind), cfg.Cfg)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		body := respond(m)
		sessions.put(body.ID, m)
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-drafts",
		Method:      http.MethodGet,
		Path:        "/drafts",
		Summary:     "List open draft sessions",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []DraftResponse `json:"body"`
	}, error) {
		var out []DraftResponse
		for _, id := range sessions.ids() {
			if body, apiErr := withDraft(id, func(*wizard.Machine) error { return nil }); apiErr == nil {
				out = append(out, body)
			}
		}
		return &struct {
			Body []DraftResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-draft",
		Method:      http.MethodGet,
		Path:        "/drafts/{draft_id}",
		Summary:     "Get a draft",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *draftPath) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(*wizard.Machine) error { return nil })
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-draft",
		Method:      http.MethodDelete,
		Path:        "/drafts/{draft_id}",
		Summary:     "Discard a draft",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *draftPath) (*struct{}, error) {
		if _, apiErr := lookup(input.DraftID); apiErr != nil {
			return nil, apiErr
		}
		sessions.remove(input.DraftID)
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-draft-fields",
		Method:      http.MethodPatch,
		Path:        "/drafts/{draft_id}/fields",
		Summary:     "Update primitive draft fields",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		DraftID string              `path:"draft_id"`
		Body    UpdateFieldsRequest `json:"body"`
	}) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			return applyFields(m, input.Body)
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-draft-item",
		Method:        http.MethodPost,
		Path:          "/drafts/{draft_id}/items",
		Summary:       "Add a line item",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		DraftID string         `path:"draft_id"`
		Body    AddItemRequest `json:"body"`
	}) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			opts := store.AddOptions{
				Description: input.Body.Description,
				Quantity:    input.Body.Quantity,
				Rate:        parseAmountPtr(input.Body.Rate),
				Overtime:    parseAmountPtr(input.Body.Overtime),
				Bonuses:     parseAmountPtr(input.Body.Bonuses),
				Deductions:  parseAmountPtr(input.Body.Deductions),
			}
			if input.Body.RefID != nil {
				opts.RefID = *input.Body.RefID
			}
			_, err := m.AddItem(opts)
			return err
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-draft-item",
		Method:      http.MethodPatch,
		Path:        "/drafts/{draft_id}/items/{item_id}",
		Summary:     "Update a line item",
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		DraftID string            `path:"draft_id"`
		ItemID  string            `path:"item_id"`
		Body    UpdateItemRequest `json:"body"`
	}) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			opts := store.UpdateOptions{
				Description: input.Body.Description,
				RefID:       input.Body.RefID,
				Quantity:    input.Body.Quantity,
				Rate:        parseAmountOpt(input.Body.Rate),
				Overtime:    parseAmountOpt(input.Body.Overtime),
				Bonuses:     parseAmountOpt(input.Body.Bonuses),
				Deductions:  parseAmountOpt(input.Body.Deductions),
			}
			_, err := m.UpdateItem(input.ItemID, opts)
			return err
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-draft-item",
		Method:      http.MethodDelete,
		Path:        "/drafts/{draft_id}/items/{item_id}",
		Summary:     "Remove a line item",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *draftItemPath) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			return m.RemoveItem(input.ItemID)
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "draft-next-step",
		Method:      http.MethodPost,
		Path:        "/drafts/{draft_id}/next",
		Summary:     "Advance one wizard step",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *draftPath) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			return m.Next()
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "draft-previous-step",
		Method:      http.MethodPost,
		Path:        "/drafts/{draft_id}/previous",
		Summary:     "Move back one wizard step",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *draftPath) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			return m.Previous()
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "draft-goto-step",
		Method:      http.MethodPost,
		Path:        "/drafts/{draft_id}/step",
		Summary:     "Jump to a wizard step",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		DraftID string          `path:"draft_id"`
		Body    GotoStepRequest `json:"body"`
	}) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			return m.Jump(domain.Step(input.Body.Step))
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-draft",
		Method:      http.MethodPost,
		Path:        "/drafts/{draft_id}/reset",
		Summary:     "Reset the draft to its empty form",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *draftPath) (*struct {
		Body DraftResponse `json:"body"`
	}, error) {
		body, apiErr := withDraft(input.DraftID, func(m *wizard.Machine) error {
			m.Reset()
			return nil
		})
		if apiErr != nil {
			return nil, apiErr
		}
		return &struct {
			Body DraftResponse `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-draft-validation",
		Method:      http.MethodGet,
		Path:        "/drafts/{draft_id}/validation",
		Summary:     "Advisory completeness report",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *draftPath) (*struct {
		Body validate.Report `json:"body"`
	}, error) {
		s, apiErr := lookup(input.DraftID)
		if apiErr != nil {
			return nil, apiErr
		}
		s.mu.Lock()
		report := s.machine.Validation()
		s.mu.Unlock()
		return &struct {
			Body validate.Report `json:"body"`
		}{Body: report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-draft",
		Method:      http.MethodPost,
		Path:        "/drafts/{draft_id}/submit",
		Summary:     "Submit the draft snapshot",
		Errors: []int{
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *draftPath) (*struct {
		Body SubmissionResponse `json:"body"`
	}, error) {
		s, apiErr := lookup(input.DraftID)
		if apiErr != nil {
			return nil, apiErr
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		payload, err := s.machine.Submit()
		if err != nil {
			return nil, handleError(err)
		}
		if err := cfg.Sink.Record(ctx, payload); err != nil {
			return nil, handleError(err)
		}
		sessions.remove(input.DraftID)
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, handleError(err)
		}
		var asMap map[string]any
		if err := json.Unmarshal(raw, &asMap); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SubmissionResponse `json:"body"`
		}{Body: SubmissionResponse{
			ID:          payload.ID,
			Kind:        string(payload.Kind),
			SubmittedAt: payload.SubmittedAt,
			Payload:     asMap,
		}}, nil
	})
}

func applyFields(m *wizard.Machine, req UpdateFieldsRequest) error {
	switch m.Draft().Kind {
	case domain.KindAsset:
		if req.Asset == nil {
			return nil
		}
		a := req.Asset
		var method *domain.Method
		if a.Method != nil {
			mv := domain.Method(*a.Method)
			method = &mv
		}
		return m.SetAssetFields(wizard.AssetFieldOptions{
			Name:            a.Name,
			CategoryID:      a.CategoryID,
			SerialNumber:    a.SerialNumber,
			PurchaseDate:    a.PurchaseDate,
			Cost:            parseAmountOpt(a.Cost),
			SalvageValue:    parseAmountOpt(a.SalvageValue),
			UsefulLifeYears: a.UsefulLifeYears,
			Method:          method,
			Location:        a.Location,
			CustodianID:     a.CustodianID,
		})
	case domain.KindPayroll:
		if req.Payroll == nil {
			return nil
		}
		p := req.Payroll
		return m.SetPayrollFields(wizard.PayrollFieldOptions{
			RunName:     p.RunName,
			PeriodStart: p.PeriodStart,
			PeriodEnd:   p.PeriodEnd,
			PayDate:     p.PayDate,
			ApproverID:  p.ApproverID,
			Notes:       p.Notes,
		})
	case domain.KindProcurement:
		if req.Procurement == nil {
			return nil
		}
		p := req.Procurement
		return m.SetProcurementFields(wizard.ProcurementFieldOptions{
			Department:   p.Department,
			Priority:     p.Priority,
			OrderDate:    p.OrderDate,
			RequiredDate: p.RequiredDate,
			VendorID:     p.VendorID,
			ShipTo:       p.ShipTo,
			Notes:        p.Notes,
		})
	}
	return nil
}

// parseAmountPtr normalizes an optional request amount to a concrete value.
func parseAmountPtr(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return domain.ParseAmount(*s)
}

// parseAmountOpt keeps absence distinct from zero for partial updates.
func parseAmountOpt(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d := domain.ParseAmount(*s)
	return &d
}
