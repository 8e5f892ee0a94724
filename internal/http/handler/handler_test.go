package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"multiplicadores/internal/analytics"
	"multiplicadores/internal/model"
	"multiplicadores/internal/service"
	serviceMocks "multiplicadores/internal/service/mocks"
)

type testMocks struct {
	auth         *serviceMocks.MockAuthService
	matricula    *serviceMocks.MockMatriculaService
	presenca     *serviceMocks.MockPresencaService
	checkin      *serviceMocks.MockCheckinService
	workato      *serviceMocks.MockWorkatoService
	felicitacoes *serviceMocks.MockFelicitacoesService
}

func newTestApp(t *testing.T) (*fiber.App, *testMocks, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := &testMocks{
		auth:         new(serviceMocks.MockAuthService),
		matricula:    new(serviceMocks.MockMatriculaService),
		presenca:     new(serviceMocks.MockPresencaService),
		checkin:      new(serviceMocks.MockCheckinService),
		workato:      new(serviceMocks.MockWorkatoService),
		felicitacoes: new(serviceMocks.MockFelicitacoesService),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db, Services{
		Auth:          m.auth,
		Matricula:     m.matricula,
		Presenca:      m.presenca,
		Checkin:       m.checkin,
		Workato:       m.workato,
		Felicitacoes:  m.felicitacoes,
		WorkatoAPIKey: "sekret",
	})
	return app, m, dbMock
}

// authorize wires the shared bearer token past the auth middleware.
func authorize(m *testMocks, req *http.Request) {
	m.auth.On("VerifyToken", "good-token").Return(&service.Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"},
	}, nil)
	req.Header.Set("Authorization", "Bearer good-token")
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	app, _, dbMock := newTestApp(t)

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("db down", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "SERVICE_UNAVAILABLE", payload.Error.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.auth.On("Login", mock.Anything, "admin", "s3cret").
			Return(&service.LoginResult{Token: "tok", ExpiresIn: 3600}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", `{"username":"admin","password":"s3cret"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "tok", body["token"])
		m.auth.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.auth.On("Login", mock.Anything, "admin", "wrong").
			Return(nil, service.ErrBadCredentials).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["ok"])
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		app, _, _ := newTestApp(t)

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/register", `{"username":"x","password":"y"}`))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "unauthorized", body["status"])
		assert.Equal(t, "Missing Bearer token", body["message"])
	})

	t.Run("expired token", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.auth.On("VerifyToken", "stale").Return(nil, service.ErrTokenExpired).Once()

		req := jsonRequest(http.MethodPost, "/auth/register", `{}`)
		req.Header.Set("Authorization", "Bearer stale")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Token expired", body["message"])
	})
}

func TestMatriculaValidate(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("NormalizeCode", "mr12345").Return("MR12345")
		m.matricula.On("Validate", mock.Anything, "MR12345").
			Return(&model.Matricula{Code: "MR12345", HolderName: "Maria", Status: model.StatusActive}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/matricula/validate?code=mr12345", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, "MR12345", body["code"])
		assert.Equal(t, "Maria", body["holder_name"])
	})

	t.Run("bad format", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("NormalizeCode", "XYZ").Return("XYZ")
		m.matricula.On("Validate", mock.Anything, "XYZ").Return(nil, service.ErrInvalidFormat).Once()
		m.matricula.On("FormatHint").Return("MR + 5 dígitos")

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/matricula/validate?code=XYZ", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["valid"])
	})

	t.Run("not found", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("NormalizeCode", "MR99999").Return("MR99999")
		m.matricula.On("Validate", mock.Anything, "MR99999").Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/matricula/validate?code=MR99999", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMatriculaResultadoPages(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.matricula.On("NormalizeCode", mock.Anything).Return("MR12345")
	m.matricula.On("Validate", mock.Anything, "MR12345").Return(nil, service.ErrNotFound)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/matricula/resultado?code=MR12345", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestMatriculaGerar(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("CodeFromCPF", "106.880.469-67").Return("10688046967", "MR48215", nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/matricula/gerar", `{"cpf":"106.880.469-67"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "10688046967", body["cpf"])
		assert.Equal(t, "MR48215", body["matricula"])
	})

	t.Run("invalid cpf", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("CodeFromCPF", "123").Return("", "", service.ErrInvalidCPF).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/matricula/gerar", `{"cpf":"123"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMatriculaEnroll(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		app, _, _ := newTestApp(t)

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/matricula/", `{"cpf":"10688046967"}`))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("created", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("Enroll", mock.Anything, "10688046967", "Maria", "1990-03-14").
			Return(&model.Matricula{ID: 1, Code: "MR48215", HolderName: "Maria", Status: model.StatusActive}, nil).Once()

		req := jsonRequest(http.MethodPost, "/matricula/", `{"cpf":"10688046967","holder_name":"Maria","birth_date":"1990-03-14"}`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("conflict", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.matricula.On("Enroll", mock.Anything, "10688046967", "", "").
			Return(nil, service.ErrAlreadyEnrolled).Once()

		req := jsonRequest(http.MethodPost, "/matricula/", `{"cpf":"10688046967"}`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestPresencaCheck(t *testing.T) {
	t.Run("valid code", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "MR12345").
			Return(&model.Matricula{Code: "MR12345", Status: model.StatusActive}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/check", `{"matricula":"MR12345"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "MR12345", body["code"])
	})

	t.Run("empty code is 400", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "").Return(nil, service.ErrCodeRequired).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/check", `{"matricula":""}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	// format and status rejections keep HTTP 200 so the kiosk form can
	// show the message inline
	t.Run("bad format is 200 with ok false", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "ABC").Return(nil, service.ErrInvalidFormat).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/check", `{"matricula":"ABC"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "Formato inválido (MR + 5 dígitos).", body["message"])
	})

	t.Run("inactive carries status", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "MR11111").
			Return(&model.Matricula{Code: "MR11111", Status: model.StatusRevoked}, service.ErrInactive).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/check", `{"matricula":"MR11111"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Matrícula inativa (status: revoked).", body["message"])
	})
}

func TestPresencaRegistrar(t *testing.T) {
	t.Run("first registration", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Register", mock.Anything, "MR12345", mock.Anything).
			Return(&service.RegisterResult{ID: 7, Code: "MR12345"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/registrar", `{"matricula":"MR12345"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, false, body["already"])
	})

	t.Run("same day repeat", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Register", mock.Anything, "MR12345", mock.Anything).
			Return(&service.RegisterResult{Code: "MR12345", Already: true}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/registrar", `{"matricula":"MR12345"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["already"])
		assert.Equal(t, "Presença já registrada hoje.", body["message"])
	})

	t.Run("unknown or inactive collapse to one message", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Register", mock.Anything, "MR99999", mock.Anything).
			Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/presenca/api/registrar", `{"matricula":"MR99999"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Matrícula inválida ou inativa.", body["message"])
	})
}

func TestPresencaRegisterGet(t *testing.T) {
	t.Run("bad format is 400", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "ABC").Return(nil, service.ErrInvalidFormat).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presenca/api/register?matricula=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Formato inválido", body["msg"])
	})

	t.Run("not found is 404", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "MR99999").Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presenca/api/register?matricula=MR99999", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("records with api source", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.presenca.On("Check", mock.Anything, "MR12345").
			Return(&model.Matricula{Code: "MR12345", Status: model.StatusActive}, nil).Once()
		m.presenca.On("Register", mock.Anything, "MR12345", mock.MatchedBy(func(meta service.RequestMeta) bool {
			return meta.Source == "api"
		})).Return(&service.RegisterResult{ID: 3, Code: "MR12345"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presenca/api/register?matricula=MR12345", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.presenca.AssertExpectations(t)
	})
}

func TestPresencaList(t *testing.T) {
	app, m, _ := newTestApp(t)
	ts := time.Date(2026, 8, 14, 12, 30, 0, 0, time.UTC)
	m.presenca.On("List", mock.Anything, mock.Anything, 1, 50).
		Return(&service.PresencaListResult{
			Items: []model.PresencaDetail{{
				ID: 1, DateKey: ts, Timestamp: ts,
				Code: "MR12345", HolderName: "Maria", Status: model.StatusActive,
			}},
			Total: 1, Page: 1, Pages: 1, PerPage: 50,
		}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presenca/api", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["total"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "2026-08-14", first["date_key"])
	// CPF is only exposed by the export endpoints
	_, hasCPF := first["cpf"]
	assert.False(t, hasCPF)
}

func TestPresencaExportCSV(t *testing.T) {
	app, m, _ := newTestApp(t)
	ts := time.Date(2026, 8, 14, 12, 30, 0, 0, time.UTC)
	m.presenca.On("Export", mock.Anything, mock.Anything).
		Return([]model.PresencaDetail{{
			ID: 1, DateKey: ts, Timestamp: ts,
			Code: "MR12345", HolderName: "Maria", CPF: "10688046967", Status: model.StatusActive,
		}}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/presenca/export.csv", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "presencas.csv")
}

func TestCheckinAPI(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.checkin.On("Submit", mock.Anything, mock.MatchedBy(func(in service.CheckinInput) bool {
			return in.CPF == "10688046967" && in.EventDate.Format("2006-01-02") == "2026-08-14"
		})).Return(&service.CheckinResult{
			Checkin: &model.EventCheckin{CPF: "10688046967"},
		}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/checkin/api",
			`{"cpf":"10688046967","birth_date":"14/03/1990","event":"2026-08-14"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, false, body["updated"])
		assert.Equal(t, "2026-08-14", body["event_date"])
	})

	t.Run("missing fields", func(t *testing.T) {
		app, _, _ := newTestApp(t)

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/checkin/api", `{"cpf":"10688046967"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("birth date mismatch", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.checkin.On("Submit", mock.Anything, mock.Anything).
			Return(nil, service.ErrBirthDateMismatch).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/checkin/api",
			`{"cpf":"10688046967","birth_date":"01/01/2000"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["ok"])
	})
}

func TestWorkatoTest(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/workato/test", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Workato ativo e respondendo!", body["message"])
}

func TestWorkatoSecure(t *testing.T) {
	t.Run("wrong key", func(t *testing.T) {
		app, _, _ := newTestApp(t)

		req := jsonRequest(http.MethodPost, "/workato/secure", `{}`)
		req.Header.Set("X-API-Key", "nope")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Chave de API inválida", body["error"])
	})

	t.Run("right key", func(t *testing.T) {
		app, _, _ := newTestApp(t)

		req := jsonRequest(http.MethodPost, "/workato/secure", `{"ping":"pong"}`)
		req.Header.Set("X-API-Key", "sekret")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestWorkatoReport(t *testing.T) {
	t.Run("bare array body", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.workato.On("Report", mock.Anything, mock.Anything, (*bool)(nil)).
			Return(&analytics.Report{}, nil).Once()

		req := jsonRequest(http.MethodPost, "/workato/report", `[{"id_cota":"1"}]`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.workato.AssertExpectations(t)
	})

	t.Run("dedup override", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.workato.On("Report", mock.Anything, mock.Anything, mock.MatchedBy(func(d *bool) bool {
			return d != nil && *d
		})).Return(&analytics.Report{}, nil).Once()

		req := jsonRequest(http.MethodPost, "/workato/report?dedup=1", `{"data":[]}`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing columns", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.workato.On("Report", mock.Anything, mock.Anything, (*bool)(nil)).
			Return(nil, &analytics.MissingColumnsError{Columns: []string{"Data da venda"}}).Once()

		req := jsonRequest(http.MethodPost, "/workato/report", `[{}]`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "error", body["status"])
		assert.Contains(t, body["missing_columns"], "Data da venda")
	})

	t.Run("rejects non-array body", func(t *testing.T) {
		app, m, _ := newTestApp(t)

		req := jsonRequest(http.MethodPost, "/workato/report", `{"rows":[]}`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestWorkatoProxy(t *testing.T) {
	t.Run("forwards", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.workato.On("Proxy", mock.Anything, []byte(`{"x":1}`)).
			Return(json.RawMessage(`{"done":true}`), nil).Once()

		req := jsonRequest(http.MethodPost, "/workato/proxy", `{"x":1}`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("upstream failure", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.workato.On("Proxy", mock.Anything, mock.Anything).
			Return(nil, &service.ErrUpstream{StatusCode: 500, Payload: []byte("boom")}).Once()

		req := jsonRequest(http.MethodPost, "/workato/proxy", `{}`)
		authorize(m, req)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, float64(500), body["upstream_status"])
		assert.Equal(t, "boom", body["upstream_body"])
	})
}

func TestFelicitacoesDispatch(t *testing.T) {
	t.Run("bare list", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.felicitacoes.On("Dispatch", mock.Anything, mock.MatchedBy(func(items []service.BirthdayItem) bool {
			return len(items) == 2
		}), false).Return(&service.DispatchResult{
			Summary: service.DispatchSummary{Sent: 1, Skipped: 1, Total: 2},
			Today:   map[string]int{"day": 14, "month": 8},
		}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/felicitacoes/disparar-aniversario",
			`[{"nome":"Maria","telefone":"5541999990000","nascimento":"14/08/1990"},{"nome":"João","telefone":"5541888880000","nascimento":"01/02/1985"}]`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "ok", body["status"])
		summary := body["summary"].(map[string]any)
		assert.Equal(t, float64(1), summary["sent"])
	})

	t.Run("single object and dry run", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.felicitacoes.On("Dispatch", mock.Anything, mock.MatchedBy(func(items []service.BirthdayItem) bool {
			return len(items) == 1 && items[0].Nome == "Maria"
		}), true).Return(&service.DispatchResult{DryRun: true}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/felicitacoes/disparar-aniversario?dry_run=1",
			`{"nome":"Maria","telefone":"5541999990000","nascimento":"14/08/1990"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["dry_run"])
	})

	t.Run("itens wrapper", func(t *testing.T) {
		app, m, _ := newTestApp(t)
		m.felicitacoes.On("Dispatch", mock.Anything, mock.Anything, false).
			Return(&service.DispatchResult{}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/felicitacoes/disparar-aniversario",
			`{"itens":[{"nome":"Maria","telefone":"5541999990000","nascimento":"14/08"}]}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unrecognized shape", func(t *testing.T) {
		app, _, _ := newTestApp(t)

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/felicitacoes/disparar-aniversario", `"oi"`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "error", body["status"])
	})
}
