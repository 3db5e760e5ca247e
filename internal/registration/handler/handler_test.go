package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"signup/internal/registration/form"
	"signup/internal/registration/handler/mocks"
	"signup/internal/registration/models"
	"signup/internal/registration/orchestrator"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/service"
	dErrors "signup/pkg/domain-errors"
)

const sessionID = "6f1c2a8e-4a55-4c1e-9d3b-0f2f5c3e9a10"

type HandlerSuite struct {
	suite.Suite
	router      http.Handler
	ctrl        *gomock.Controller
	mockService *mocks.MockService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(s.mockService, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
}

func view(state orchestrator.State) *service.SessionView {
	return &service.SessionView{
		ID: sessionID,
		View: orchestrator.View{
			State:      state,
			PersonType: models.Individual,
			Groups: []orchestrator.GroupView{{
				Name:   form.GroupIdentity,
				Fields: []form.Field{{Name: form.FieldName, Required: true}},
			}},
		},
	}
}

func (s *HandlerSuite) TestCreateWithoutBody() {
	s.mockService.EXPECT().Create(gomock.Any(), models.PersonType("")).Return(view(orchestrator.StateEditing), nil)

	rec := s.do(http.MethodPost, "/registrations", "")

	s.Equal(http.StatusCreated, rec.Code)
	var body SessionResponse
	s.decode(rec, &body)
	s.Equal(sessionID, body.ID)
	s.Equal(orchestrator.StateEditing, body.State)
	s.Equal(models.Individual, body.PersonType)
}

func (s *HandlerSuite) TestCreateWithPersonType() {
	s.mockService.EXPECT().Create(gomock.Any(), models.Organization).Return(view(orchestrator.StateEditing), nil)

	rec := s.do(http.MethodPost, "/registrations", `{"person_type":" organization "}`)
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *HandlerSuite) TestCreateRejectsUnknownPersonType() {
	rec := s.do(http.MethodPost, "/registrations", `{"person_type":"ROBOT"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetNotFound() {
	s.mockService.EXPECT().Get(gomock.Any(), sessionID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "registration session not found"))

	rec := s.do(http.MethodGet, "/registrations/"+sessionID, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), `"error":"not_found"`)
}

func (s *HandlerSuite) TestSetValuesForwardsEdits() {
	v := view(orchestrator.StateEditing)
	v.Lookups = []orchestrator.LookupResult{{PostalCode: "01310100", Status: postalcode.StatusFound, Applied: true}}
	s.mockService.EXPECT().SetValues(gomock.Any(), sessionID, []service.FieldEdit{
		{Group: form.GroupAddress, Field: form.FieldPostalCode, Value: "01310-100", Touched: true},
		{Group: form.GroupContact, Field: form.FieldEmail, Value: " a@b.com "},
	}).Return(v, nil)

	rec := s.do(http.MethodPatch, "/registrations/"+sessionID+"/fields", `{"values":[
		{"group":"Address","field":"postalCode","value":"01310-100","touched":true},
		{"group":"contact","field":" email ","value":" a@b.com "}
	]}`)

	s.Equal(http.StatusOK, rec.Code)
	var body SessionResponse
	s.decode(rec, &body)
	s.Require().Len(body.Lookups, 1)
	s.True(body.Lookups[0].Applied)
	s.Equal(postalcode.StatusFound, body.Lookups[0].Status)
}

func (s *HandlerSuite) TestSetValuesValidation() {
	cases := map[string]string{
		"malformed json": `{"values":`,
		"empty values":   `{"values":[]}`,
		"missing field":  `{"values":[{"group":"identity","value":"x"}]}`,
		"unknown group":  `{"values":[{"group":"billing","field":"name","value":"x"}]}`,
		"unknown field":  `{"values":[{"group":"identity","field":"postalCode","value":"x"}]}`,
		"value too long": `{"values":[{"group":"identity","field":"name","value":"` + strings.Repeat("a", 300) + `"}]}`,
		"too many edits": `{"values":[` + strings.TrimSuffix(strings.Repeat(`{"group":"identity","field":"name","value":"a"},`, 33), ",") + `]}`,
	}
	for name, body := range cases {
		rec := s.do(http.MethodPatch, "/registrations/"+sessionID+"/fields", body)
		s.Equal(http.StatusBadRequest, rec.Code, name)
	}
}

func (s *HandlerSuite) TestSetValuesOnClosedSession() {
	s.mockService.EXPECT().SetValues(gomock.Any(), sessionID, gomock.Any()).
		Return(nil, dErrors.Wrap(orchestrator.ErrClosed, dErrors.CodeConflict, "registration already submitted"))

	rec := s.do(http.MethodPatch, "/registrations/"+sessionID+"/fields", `{"values":[{"group":"identity","field":"name","value":"Ana"}]}`)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestSelectPersonType() {
	s.mockService.EXPECT().SelectPersonType(gomock.Any(), sessionID, models.Organization).
		Return(view(orchestrator.StateEditing), nil)

	rec := s.do(http.MethodPut, "/registrations/"+sessionID+"/person-type", `{"person_type":"ORGANIZATION"}`)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/registrations/"+sessionID+"/person-type", `{}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestSubmitSucceeded() {
	reg := &models.CompositeRegistration{
		ID:          "reg-1",
		PersonType:  models.Individual,
		Identity:    models.Identity{Name: "Ana", NationalID: "123"},
		Addresses:   []models.Address{{PostalCode: "01310-100", City: "São Paulo"}},
		Contacts:    []models.Contact{{Type: "EMAIL", Value: "a@b.com"}, {Type: "PHONE", Value: "+551199999999"}},
		SubmittedAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	}
	s.mockService.EXPECT().Submit(gomock.Any(), sessionID).Return(&service.SubmitResult{
		Outcome: orchestrator.Outcome{State: orchestrator.StateSucceeded, Registration: reg},
		Session: *view(orchestrator.StateSucceeded),
	}, nil)

	rec := s.do(http.MethodPost, "/registrations/"+sessionID+"/submit", "")

	s.Equal(http.StatusOK, rec.Code)
	var body SubmitResponse
	s.decode(rec, &body)
	s.Equal(orchestrator.StateSucceeded, body.Status)
	s.Require().NotNil(body.Registration)
	s.Len(body.Registration.Contacts, 2)
	s.Empty(body.Error)
}

func (s *HandlerSuite) TestSubmitRejectedIs422WithViolations() {
	violations := []orchestrator.Violation{
		{Group: form.GroupIdentity, Field: form.FieldNationalID},
		{Group: form.GroupContact, Field: form.FieldEmail},
	}
	s.mockService.EXPECT().Submit(gomock.Any(), sessionID).Return(&service.SubmitResult{
		Outcome: orchestrator.Outcome{
			State:      orchestrator.StateRejected,
			Reason:     orchestrator.ReasonIncompleteForm,
			Violations: violations,
		},
		Session: *view(orchestrator.StateRejected),
	}, nil)

	rec := s.do(http.MethodPost, "/registrations/"+sessionID+"/submit", "")

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	var body SubmitResponse
	s.decode(rec, &body)
	s.Equal(orchestrator.StateRejected, body.Status)
	s.Equal("incomplete_form", body.Error)
	s.Equal(violations, body.Violations)
	s.Nil(body.Registration)
	s.Equal(orchestrator.StateRejected, body.Session.State)
}

func (s *HandlerSuite) TestSubmitSinkUnavailable() {
	s.mockService.EXPECT().Submit(gomock.Any(), sessionID).
		Return(nil, dErrors.Wrap(errors.New("broker down"), dErrors.CodeUnavailable, "failed to deliver registration"))

	rec := s.do(http.MethodPost, "/registrations/"+sessionID+"/submit", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *HandlerSuite) TestDelete() {
	s.mockService.EXPECT().Delete(gomock.Any(), sessionID).Return(nil)
	rec := s.do(http.MethodDelete, "/registrations/"+sessionID, "")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Empty(rec.Body.Bytes())
}

func (s *HandlerSuite) TestLookupStatuses() {
	paulista := models.AddressRecord{Street: "Av. Paulista", Neighborhood: "Bela Vista", City: "São Paulo", StateCode: "SP"}
	cases := []struct {
		name     string
		result   postalcode.Result
		status   int
		advisory models.AdvisoryKind
	}{
		{"found", postalcode.Found(paulista), http.StatusOK, ""},
		{"not found", postalcode.NotFound(), http.StatusNotFound, models.AdvisoryPostalCodeNotFound},
		{"unavailable", postalcode.TransportFailure(errors.New("timeout")), http.StatusServiceUnavailable, models.AdvisoryLookupUnavailable},
	}
	for _, tc := range cases {
		s.mockService.EXPECT().Lookup(gomock.Any(), "01310-100").Return(tc.result, nil)

		rec := s.do(http.MethodGet, "/postal-codes/01310-100", "")

		s.Equal(tc.status, rec.Code, tc.name)
		var body PostalCodeResponse
		s.decode(rec, &body)
		s.Equal("01310100", body.PostalCode, tc.name)
		if tc.advisory == "" {
			s.Require().NotNil(body.Address, tc.name)
			s.Equal(paulista, *body.Address)
			continue
		}
		s.Require().NotNil(body.Advisory, tc.name)
		s.Equal(tc.advisory, body.Advisory.Kind, tc.name)
	}
}

func (s *HandlerSuite) TestLookupRejectsOversizedCode() {
	rec := s.do(http.MethodGet, "/postal-codes/"+strings.Repeat("1", 40), "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestLookupIneligibleCode() {
	s.mockService.EXPECT().Lookup(gomock.Any(), "0131010").
		Return(postalcode.Result{}, dErrors.New(dErrors.CodeBadRequest, "postal code must have 8 digits"))

	rec := s.do(http.MethodGet, "/postal-codes/0131010", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestRequestsAreJSONBodies() {
	var buf bytes.Buffer
	s.Require().NoError(json.NewEncoder(&buf).Encode(FieldsRequest{Values: []FieldValue{{Group: "identity", Field: "name", Value: "Ana"}}}))
	s.mockService.EXPECT().SetValues(gomock.Any(), sessionID, gomock.Len(1)).Return(view(orchestrator.StateEditing), nil)

	rec := s.do(http.MethodPatch, "/registrations/"+sessionID+"/fields", buf.String())
	s.Equal(http.StatusOK, rec.Code)
}
