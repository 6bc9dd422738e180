package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/config"
	"github.com/yigit/greenleaf/internal/pkg/vision"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type stubVision struct {
	text string
	err  error
}

func (s stubVision) Analyze(context.Context, vision.Request) (string, error) {
	return s.text, s.err
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, client vision.Client, env map[string]string) *testAPI {
	t.Helper()
	return newTestAPIWithLogger(t, client, env, zerolog.Nop())
}

func newTestAPIWithLogger(t *testing.T, client vision.Client, env map[string]string, lgr zerolog.Logger) *testAPI {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", config.DriverMemory)
	t.Setenv("SERVER_STORAGE_PATH", t.TempDir())
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.LoadConfig("testdata/missing.yaml")
	require.NoError(t, err)

	ctx := context.Background()
	repos, err := SetupDatabase(ctx, cfg, lgr)
	require.NoError(t, err)
	storage, err := SetupFileStorage(cfg, lgr)
	require.NoError(t, err)

	deps, err := BuildDependencies(cfg, repos, storage, client, lgr)
	require.NoError(t, err)
	return &testAPI{t: t, router: SetupRouter(cfg, deps, lgr)}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, token)
}

func (a *testAPI) upload(path, token string, fields map[string]string, image []byte) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "leaf.png")
		require.NoError(a.t, err)
		_, err = part.Write(image)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.send(req, token)
}

func (a *testAPI) send(req *http.Request, token string) (int, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// register creates an account and returns its id and token
func (a *testAPI) register(fullName, email string) (string, string) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"fullName": fullName, "email": email, "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	auth := decode[dto.AuthResponse](a.t, env.Data)
	return auth.User.ID, auth.Token.AccessToken
}

func TestCommunityWalkthrough(t *testing.T) {
	api := newTestAPI(t, vision.DisabledClient{}, nil)

	annID, _ := api.register("Ann", "a@x.com")

	code, env := api.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code)
	annToken := decode[dto.AuthResponse](t, env.Data).Token.AccessToken

	code, env = api.do(http.MethodPost, "/api/communities/create", annToken, map[string]string{
		"name": "Tea Growers", "description": "For tea farmers",
	})
	require.Equal(t, http.StatusCreated, code)
	community := decode[dto.CommunityResponse](t, env.Data)
	assert.Equal(t, annID, community.AdminID)
	assert.Equal(t, []string{annID}, community.MemberIDs)

	code, env = api.do(http.MethodPost, "/api/community-posts/create", annToken, map[string]string{
		"content": "Hello", "communityId": community.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	post := decode[dto.PostResponse](t, env.Data)

	code, env = api.do(http.MethodGet, "/api/communities/"+annID, annToken, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[dto.CommunityListResponse](t, env.Data)
	require.Len(t, list.UserCommunities, 1)
	assert.Equal(t, []string{post.ID}, list.UserCommunities[0].PostIDs)

	bobID, bobToken := api.register("Bob", "b@x.com")
	code, _ = api.do(http.MethodPost, "/api/communities/join/"+community.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodPost, "/api/community-replies/create", bobToken, map[string]string{
		"content": "Nice leaves", "postId": post.ID, "communityId": community.ID,
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do(http.MethodGet, "/api/community-replies/post/"+post.ID, annToken, nil)
	require.Equal(t, http.StatusOK, code)
	tree := decode[[]*dto.ReplyResponse](t, env.Data)
	require.Len(t, tree, 1)
	assert.Equal(t, bobID, tree[0].AuthorID)
	require.NotNil(t, tree[0].Author)
	assert.Equal(t, "Bob", tree[0].Author.FullName)
	require.NotNil(t, tree[0].Post)
	assert.Equal(t, "Ann", tree[0].Post.AuthorName)
}

func TestRoutesRequireAuthentication(t *testing.T) {
	api := newTestAPI(t, vision.DisabledClient{}, nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/profile"},
		{http.MethodGet, "/api/communities/someone"},
		{http.MethodPost, "/api/communities/create"},
		{http.MethodGet, "/api/community-posts/post/p1"},
		{http.MethodPost, "/api/community-replies/create"},
		{http.MethodPost, "/api/analyze-plant"},
		{http.MethodPost, "/api/uploads/image"},
	} {
		code, env := api.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, route.path)
		require.NotNil(t, env.Error, route.path)
		assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)
	}

	code, env := api.do(http.MethodGet, "/api/users/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, env.Error.Code)
}

func TestErrorStatuses(t *testing.T) {
	api := newTestAPI(t, vision.DisabledClient{}, nil)
	_, annToken := api.register("Ann", "a@x.com")
	_, bobToken := api.register("Bob", "b@x.com")

	code, env := api.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"fullName": "Ann", "email": "other@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Full name already exists", env.Error.Message)

	code, env = api.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)

	_, env = api.do(http.MethodPost, "/api/communities/create", annToken, map[string]string{
		"name": "Tea Growers", "description": "For tea farmers",
	})
	community := decode[dto.CommunityResponse](t, env.Data)

	code, env = api.do(http.MethodPut, "/api/communities/update/"+community.ID, bobToken, map[string]string{
		"name": "Coffee Growers",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, dto.ErrorCodeForbidden, env.Error.Code)

	code, _ = api.do(http.MethodPost, "/api/communities/leave/"+community.ID, bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/api/communities/community/missing", annToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodPost, "/api/communities/create", annToken, map[string]string{
		"name": "  ", "description": "For tea farmers",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
}

func TestOwnerOnDeleteSetting(t *testing.T) {
	for _, enforce := range []bool{false, true} {
		flag := "false"
		if enforce {
			flag = "true"
		}
		t.Run("enforce="+flag, func(t *testing.T) {
			api := newTestAPI(t, vision.DisabledClient{}, map[string]string{"AUTHZ_ENFORCE_OWNER_ON_DELETE": flag})
			_, annToken := api.register("Ann", "a@x.com")
			_, bobToken := api.register("Bob", "b@x.com")

			_, env := api.do(http.MethodPost, "/api/communities/create", annToken, map[string]string{
				"name": "Tea Growers", "description": "For tea farmers",
			})
			community := decode[dto.CommunityResponse](t, env.Data)

			code, _ := api.do(http.MethodDelete, "/api/communities/delete/"+community.ID, bobToken, nil)
			if enforce {
				assert.Equal(t, http.StatusForbidden, code)
			} else {
				assert.Equal(t, http.StatusOK, code)
			}
		})
	}
}

func TestMutationsLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	api := newTestAPIWithLogger(t, vision.DisabledClient{}, nil, zerolog.New(&buf))

	_, annToken := api.register("Ann", "a@x.com")
	bobID, bobToken := api.register("Bob", "b@x.com")

	_, env := api.do(http.MethodPost, "/api/communities/create", annToken, map[string]string{
		"name": "Tea Growers", "description": "For tea farmers",
	})
	community := decode[dto.CommunityResponse](t, env.Data)
	code, _ := api.do(http.MethodPost, "/api/communities/join/"+community.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, code)

	_, env = api.do(http.MethodPost, "/api/community-posts/create", annToken, map[string]string{
		"content": "Hello", "communityId": community.ID,
	})
	post := decode[dto.PostResponse](t, env.Data)
	_, env = api.do(http.MethodPost, "/api/community-replies/create", annToken, map[string]string{
		"content": "First", "postId": post.ID, "communityId": community.ID,
	})
	reply := decode[dto.ReplyResponse](t, env.Data)

	for _, req := range []struct{ path, token string }{
		{"/api/community-replies/delete/" + reply.ID, annToken},
		{"/api/community-posts/delete/" + post.ID, annToken},
		{"/api/communities/community/" + community.ID + "/members/" + bobID, annToken},
		{"/api/communities/delete/" + community.ID, annToken},
		{"/api/users/profile", bobToken},
	} {
		code, env := api.do(http.MethodDelete, req.path, req.token, nil)
		require.Equal(t, http.StatusOK, code, "%s: %v", req.path, env.Error)
	}

	counts := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		counts[entry.Message]++
	}
	for _, msg := range []string{
		"User registered", "Community created", "Reply deleted", "Post deleted",
		"Member removed", "Community deleted", "Account deleted",
	} {
		want := 1
		if msg == "User registered" {
			want = 2
		}
		assert.Equal(t, want, counts[msg], msg)
	}
}

func TestBlankProfileImageRestoresDefault(t *testing.T) {
	api := newTestAPI(t, vision.DisabledClient{}, nil)
	_, token := api.register("Ann", "a@x.com")

	code, env := api.do(http.MethodPut, "/api/users/profile", token, map[string]string{"profileImage": "https://img/ann.png"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "https://img/ann.png", decode[dto.UserResponse](t, env.Data).ProfileImage)

	code, env = api.do(http.MethodPut, "/api/users/profile", token, map[string]string{"profileImage": ""})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "https://www.gravatar.com/avatar/?d=mp", decode[dto.UserResponse](t, env.Data).ProfileImage)
}

func TestAnalyzePlant(t *testing.T) {
	model := "```json\n{\"predictions\":[{\"disease\":\"Blister Blight\",\"accuracy\":0.85,\"description\":\"Fungal\",\"treatment\":[]}]}\n```"
	api := newTestAPI(t, stubVision{text: model}, nil)
	_, token := api.register("Ann", "a@x.com")

	code, env := api.upload("/api/analyze-plant", token, map[string]string{"plantType": "Tea"}, pngBytes)
	require.Equal(t, http.StatusOK, code, env.Error)
	resp := decode[dto.PlantAnalysisResponse](t, env.Data)
	assert.Equal(t, "Tea", resp.PlantType)
	assert.Equal(t, model, resp.Analysis)
	assert.Empty(t, resp.ParseError)
	require.Len(t, resp.Predictions, 1)
	assert.Equal(t, "85%", resp.Predictions[0].Accuracy)

	code, env = api.upload("/api/analyze-plant", token, map[string]string{"plantType": "Tea"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "image", env.Error.Field)

	code, env = api.upload("/api/analyze-plant", token, nil, pngBytes)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "plantType", env.Error.Field)
}

func TestAnalyzePlantNonJSONAnswer(t *testing.T) {
	api := newTestAPI(t, stubVision{text: "I cannot see a leaf here."}, nil)
	_, token := api.register("Ann", "a@x.com")

	code, env := api.upload("/api/analyze-plant", token, map[string]string{"plantType": "Cinnamon"}, pngBytes)
	require.Equal(t, http.StatusOK, code)
	resp := decode[dto.PlantAnalysisResponse](t, env.Data)
	assert.Equal(t, "I cannot see a leaf here.", resp.Analysis)
	assert.NotEmpty(t, resp.ParseError)
	assert.Nil(t, resp.Result)
}

func TestAnalyzePlantModelFailure(t *testing.T) {
	api := newTestAPI(t, stubVision{err: errors.New("quota exceeded")}, nil)
	_, token := api.register("Ann", "a@x.com")

	code, env := api.upload("/api/analyze-plant", token, map[string]string{"plantType": "Tea"}, pngBytes)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, dto.ErrorCodeExternalServiceError, env.Error.Code)
}

func TestUploadImageServedFromStorage(t *testing.T) {
	api := newTestAPI(t, vision.DisabledClient{}, nil)
	_, token := api.register("Ann", "a@x.com")

	code, env := api.upload("/api/uploads/image", token, nil, pngBytes)
	require.Equal(t, http.StatusCreated, code, env.Error)
	uploaded := decode[dto.UploadResponse](t, env.Data)
	assert.Equal(t, "image/png", uploaded.ContentType)
	require.True(t, strings.HasPrefix(uploaded.URL, "http://localhost:8080/uploads/images/"), uploaded.URL)

	req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(uploaded.URL, "http://localhost:8080"), nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())

	code, env = api.upload("/api/uploads/image", token, nil, []byte("just some text"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "image", env.Error.Field)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, vision.DisabledClient{}, nil)

	code, env := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "greenleaf_")
}
