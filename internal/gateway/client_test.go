package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddportal/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", opts)
}

func textUpload(name, body string) Upload {
	return Upload{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}}
}

func TestResolveBaseURL(t *testing.T) {
	hosts := map[string]string{
		"hupcfl.com":         "https://dd-backend.cp.hupcfl.com/api",
		"staging.hupcfl.com": "https://staging-backend.hupcfl.com/api",
	}
	dev := "http://localhost:5000/api"

	t.Run("override wins", func(t *testing.T) {
		assert.Equal(t, "https://x.test/api", ResolveBaseURL(" https://x.test/api ", "dd.cp.hupcfl.com", hosts, dev))
	})
	t.Run("production hostname", func(t *testing.T) {
		assert.Equal(t, "https://dd-backend.cp.hupcfl.com/api", ResolveBaseURL("", "DD.CP.HUPCFL.COM", hosts, dev))
	})
	t.Run("longest suffix", func(t *testing.T) {
		assert.Equal(t, "https://staging-backend.hupcfl.com/api", ResolveBaseURL("", "dd.staging.hupcfl.com", hosts, dev))
	})
	t.Run("development default", func(t *testing.T) {
		assert.Equal(t, dev, ResolveBaseURL("", "localhost", hosts, dev))
		assert.Equal(t, dev, ResolveBaseURL("", "", hosts, dev))
	})
}

func TestBearerHeader(t *testing.T) {
	var got []string
	var mu sync.Mutex
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}, Options{})

	_, err := c.Companies(WithCredential(context.Background(), "tok-1"))
	require.NoError(t, err)
	_, err = c.Companies(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok-1", ""}, got)
}

func TestUnauthorizedHook(t *testing.T) {
	var calls atomic.Int32
	var seen string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}, Options{OnUnauthorized: func(ctx context.Context) {
		calls.Add(1)
		seen = credentialFrom(ctx)
	}})

	_, err := c.Users(WithCredential(context.Background(), "stale"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "stale", seen)
	assert.Equal(t, "token expired", Message(err, "generic"))
}

func TestErrorMessages(t *testing.T) {
	status := http.StatusBadRequest
	body := `{"message":"Company name already exists"}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}, Options{OnUnauthorized: func(context.Context) { t.Fatal("hook must only run for 401") }})

	err := c.CreateCompany(context.Background(), "Acme")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Company name already exists", Message(err, "Failed"))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	status, body = http.StatusInternalServerError, `{"error":"boom"}`
	assert.Equal(t, "boom", Message(c.CreateCompany(context.Background(), "Acme"), "Failed"))

	assert.Equal(t, "Failed", Message(errors.New("dial tcp: refused"), "Failed"))
}

func TestLoginAndMe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.c", body["email"])
			_, _ = w.Write([]byte(`{"token":"t","user":{"id":"4","email":"a@b.c","role":"admin","company_id":2}}`))
		case "/api/auth/me":
			_, _ = w.Write([]byte(`{"id":4,"email":"a@b.c","role":"admin","company_id":"2","company_name":"Acme"}`))
		}
	}, Options{})

	res, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, models.ID(4), res.User.ID)

	me, err := c.Me(WithCredential(context.Background(), "t"))
	require.NoError(t, err)
	assert.Equal(t, models.ID(2), me.CompanyID)
	assert.Equal(t, "Acme", me.CompanyName)
	assert.True(t, me.IsAdmin())
}

func TestIdentityWithoutCompany(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"t","user":{"id":1,"email":"root@x.y","role":"admin","company_id":null,"company_name":null}}`))
		case "/api/auth/me":
			_, _ = w.Write([]byte(`{"id":1,"email":"root@x.y","role":"admin","company_id":null,"company_name":null}`))
		case "/api/users":
			_, _ = w.Write([]byte(`[{"id":1,"email":"root@x.y","role":"admin","company_id":null},{"id":2,"email":"u@x.y","role":"user","company_id":"5","company_name":"Acme"}]`))
		}
	}, Options{})

	res, err := c.Login(context.Background(), "root@x.y", "pw")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Zero(t, res.User.CompanyID)

	me, err := c.Me(WithCredential(context.Background(), "t"))
	require.NoError(t, err)
	assert.Equal(t, models.ID(1), me.ID)
	assert.Empty(t, me.CompanyName)

	users, err := c.Users(WithCredential(context.Background(), "t"))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Zero(t, users[0].CompanyID)
	assert.Equal(t, models.ID(5), users[1].CompanyID)
}

func TestSubmitResponseMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/responses", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "12", r.FormValue("itemId"))
		assert.Equal(t, "Yes", r.FormValue("response"))
		assert.Empty(t, r.MultipartForm.Value["targetUserId"])
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.pdf", files[0].Filename)
		assert.Equal(t, "b.pdf", files[1].Filename)
		_, _ = w.Write([]byte(`{"id":99,"item_id":12,"response":"Yes","file_paths":[{"storedFileName":"s-a","originalName":"a.pdf"}]}`))
	}, Options{})

	echo, err := c.SubmitResponse(context.Background(), Submission{
		ItemID:   12,
		Response: models.AnswerYes,
		Files:    []Upload{textUpload("a.pdf", "A"), textUpload("b.pdf", "B")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID(99), echo.ID)
	assert.False(t, echo.UserID.Valid)
	require.Len(t, echo.FilePaths, 1)
}

func TestSubmitResponseOnBehalf(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "7", r.FormValue("targetUserId"))
		assert.Equal(t, "3", r.FormValue("targetCompanyId"))
		assert.Equal(t, "No", r.FormValue("response"))
		_, _ = w.Write([]byte(`{"id":1}`))
	}, Options{})

	uid, cid := models.ID(7), models.ID(3)
	_, err := c.SubmitResponse(context.Background(), Submission{ItemID: 5, Response: models.AnswerNo, TargetUserID: &uid, TargetCompanyID: &cid})
	require.NoError(t, err)
}

func TestSubmitResponseFileOpenError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		w.WriteHeader(http.StatusBadRequest)
	}, Options{})

	broken := Upload{Name: "x", Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") }}
	_, err := c.SubmitResponse(context.Background(), Submission{ItemID: 1, Response: models.AnswerYes, Files: []Upload{broken}})
	assert.Error(t, err)
}

func TestDeleteResponseFileSendsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/responses/8/file", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "stored-1", body["storedFileName"])
		w.WriteHeader(http.StatusNoContent)
	}, Options{})

	require.NoError(t, c.DeleteResponseFile(context.Background(), 8, "stored-1"))
}

func TestUploadDocuments(t *testing.T) {
	var uploads atomic.Int32
	fail := ""
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/user/5/upload", r.URL.Path)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fh := r.MultipartForm.File["document"]
		if len(fh) != 1 || fh[0].Filename == fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		uploads.Add(1)
		w.WriteHeader(http.StatusCreated)
	}, Options{})

	files := []Upload{textUpload("1.pdf", "1"), textUpload("2.pdf", "2"), textUpload("3.pdf", "3")}
	require.NoError(t, c.UploadDocuments(context.Background(), 5, files))
	assert.Equal(t, int32(3), uploads.Load())

	fail = "2.pdf"
	err := c.UploadDocuments(context.Background(), 5, files)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUploadFailed))
}

func TestDownloadDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/download/report q1.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}, Options{})

	dl, err := c.DownloadDocument(context.Background(), "report q1.pdf")
	require.NoError(t, err)
	defer dl.Body.Close()
	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
	assert.Equal(t, "application/pdf", dl.ContentType)
}

func TestCreateUserReturnsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["companyId"])
		_, _ = w.Write([]byte(`{"userId":"41"}`))
	}, Options{})

	id, err := c.CreateUser(context.Background(), NewUser{Email: "n@x.y", Password: "secret123", Role: "user", CompanyID: 3})
	require.NoError(t, err)
	assert.Equal(t, models.SomeID(41), id)
}
