package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoping/promoping-client/internal/gateway"
	"github.com/promoping/promoping-client/internal/models"
	"github.com/promoping/promoping-client/internal/repository"
)

// transportStub подменяет сетевой шлюз заранее заданным исходом.
type transportStub struct {
	status     int
	body       string
	err        error
	lastMethod string
	lastPath   string
	lastBody   any
	calls      int
}

func (s *transportStub) DoJSON(_ context.Context, method, path string, body any) (*gateway.Response, error) {
	s.calls++
	s.lastMethod, s.lastPath, s.lastBody = method, path, body
	if s.err != nil {
		return nil, s.err
	}
	return &gateway.Response{Status: s.status, Body: []byte(s.body)}, nil
}

func (s *transportStub) DoStream(_ context.Context, method, path string) (int, io.ReadCloser, error) {
	s.calls++
	s.lastMethod, s.lastPath = method, path
	if s.err != nil {
		return 0, nil, s.err
	}
	return s.status, io.NopCloser(strings.NewReader(s.body)), nil
}

func newRepo(t *testing.T, transport repository.Transport) *repository.Repository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repository.New(transport, t.TempDir(), logger)
}

func TestLogin_Success(t *testing.T) {
	stub := &transportStub{status: 200, body: `{"token":"jwt-1","user":{"nome":"Ana","email":"ana@example.com"}}`}
	repo := newRepo(t, stub)

	res := repo.Login(context.Background(), "ana@example.com", "pass")

	require.True(t, res.IsSuccess())
	assert.Equal(t, "jwt-1", res.Value().Token)
	require.NotNil(t, res.Value().User)
	assert.Equal(t, "Ana", res.Value().User.Name)
	assert.Equal(t, http.MethodPost, stub.lastMethod)
	assert.Equal(t, "/api/auth/login", stub.lastPath)
}

func TestCall_ServerErrorWithStructuredBody(t *testing.T) {
	stub := &transportStub{status: 500, body: `{"message":"x"}`}
	repo := newRepo(t, stub)

	res := repo.FetchStats(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, "x", res.Message())
	assert.Equal(t, 500, res.StatusCode())
}

func TestCall_ErrorFieldUsedWhenMessageAbsent(t *testing.T) {
	stub := &transportStub{status: 409, body: `{"error":"already tracked"}`}
	repo := newRepo(t, stub)

	res := repo.CreateProduct(context.Background(), models.CreateProductRequest{Name: "x", Link: "https://x", TargetPrice: 1})

	require.True(t, res.IsError())
	assert.Equal(t, "already tracked", res.Message())
	assert.Equal(t, 409, res.StatusCode())
}

func TestCall_UnparseableErrorBodyTruncatedTo120(t *testing.T) {
	long := strings.Repeat("a", 300)
	stub := &transportStub{status: 500, body: long}
	repo := newRepo(t, stub)

	res := repo.FetchProducts(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, long[:120], res.Message())
	assert.Equal(t, 500, res.StatusCode())
}

func TestCall_UnparseableErrorBodyTruncatesByRunes(t *testing.T) {
	body := strings.Repeat("a", 119) + "éé"
	stub := &transportStub{status: 500, body: body}
	repo := newRepo(t, stub)

	res := repo.FetchProducts(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, strings.Repeat("a", 119)+"é", res.Message())
	assert.True(t, utf8.ValidString(res.Message()), "truncation must not split a multi-byte rune")
}

func TestCall_EmptyErrorBody(t *testing.T) {
	stub := &transportStub{status: 503, body: ""}
	repo := newRepo(t, stub)

	res := repo.FetchProfile(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, "Error 503", res.Message())
	assert.Equal(t, 503, res.StatusCode())
}

func TestCall_EmptyBodyOnSuccess(t *testing.T) {
	stub := &transportStub{status: 200, body: ""}
	repo := newRepo(t, stub)

	res := repo.FetchProducts(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, "empty response", res.Message())
	assert.Equal(t, 0, res.StatusCode(), "no HTTP status is attached for an empty-body failure")
}

func TestCall_TransportFault(t *testing.T) {
	stub := &transportStub{err: errors.New("dial tcp: connection refused")}
	repo := newRepo(t, stub)

	res := repo.FetchProducts(context.Background())

	require.True(t, res.IsError())
	assert.Contains(t, res.Message(), "connection refused")
	assert.Equal(t, 0, res.StatusCode())
}

func TestUpdatePassword_NoBodyExpected(t *testing.T) {
	stub := &transportStub{status: 204, body: ""}
	repo := newRepo(t, stub)

	res := repo.UpdatePassword(context.Background(), models.UpdatePasswordRequest{
		CurrentPassword: "old", NewPassword: "new123", Confirmation: "new123",
	})

	assert.True(t, res.IsSuccess(), "operations without a response body succeed on empty 2xx")
}

func TestFetchProducts_ConvertsWirePayload(t *testing.T) {
	stub := &transportStub{status: 200, body: `{
		"status": "ok",
		"produtos": [
			{"Id": 7, "Nome": "Monitor", "Link": "https://shop/m", "Loja": "Fnac", "PrecoAlvo": 199.0}
		]
	}`}
	repo := newRepo(t, stub)

	res := repo.FetchProducts(context.Background())

	require.True(t, res.IsSuccess())
	require.Len(t, res.Value(), 1)
	assert.Equal(t, "7", res.Value()[0].ID)
	assert.Equal(t, "Fnac", res.Value()[0].Store)
}

func TestFetchProfile_MissingProfileObject(t *testing.T) {
	stub := &transportStub{status: 200, body: `{"status":"ok"}`}
	repo := newRepo(t, stub)

	res := repo.FetchProfile(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, "empty response", res.Message())
}

func TestExport_WritesFixedFileName(t *testing.T) {
	stub := &transportStub{status: 200, body: "PDFDATA"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cacheDir := t.TempDir()
	repo := repository.New(stub, cacheDir, logger)

	res := repo.ExportProductsPDF(context.Background())

	require.True(t, res.IsSuccess())
	assert.Equal(t, filepath.Join(cacheDir, "promoping-products.pdf"), res.Value())

	raw, err := os.ReadFile(res.Value())
	require.NoError(t, err)
	assert.Equal(t, "PDFDATA", string(raw))
}

func TestExport_ErrorStatusParsesBody(t *testing.T) {
	stub := &transportStub{status: 403, body: `{"message":"plan does not allow exports"}`}
	repo := newRepo(t, stub)

	res := repo.ExportProductsExcel(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, "plan does not allow exports", res.Message())
	assert.Equal(t, 403, res.StatusCode())
}

func TestExport_TransportFault(t *testing.T) {
	stub := &transportStub{err: errors.New("timeout")}
	repo := newRepo(t, stub)

	res := repo.ExportFullReport(context.Background())

	require.True(t, res.IsError())
	assert.Equal(t, "timeout", res.Message())
}

func TestStaticPlans_FourTiersNoRemoteCall(t *testing.T) {
	stub := &transportStub{}
	repo := newRepo(t, stub)

	plans := repo.StaticPlans()

	require.Len(t, plans, 4)
	assert.Equal(t, []string{"Free", "Basic", "Standard", "Premium"},
		[]string{plans[0].Name, plans[1].Name, plans[2].Name, plans[3].Name})
	assert.False(t, plans[0].ExportsReports)
	assert.True(t, plans[3].ExportsReports)
	assert.Equal(t, 0, stub.calls, "the plan catalog is static")
}

func TestDeleteProduct_PathContainsID(t *testing.T) {
	stub := &transportStub{status: 200, body: `{"status":"ok","message":"removed"}`}
	repo := newRepo(t, stub)

	res := repo.DeleteProduct(context.Background(), "42")

	require.True(t, res.IsSuccess())
	assert.Equal(t, http.MethodDelete, stub.lastMethod)
	assert.Equal(t, "/api/produtos/42", stub.lastPath)
}
