package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/journey"
	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/notifications/websocket"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateSession(ctx context.Context) (*journey.Controller, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockService) GetSession(ctx context.Context, id uuid.UUID) (*journey.Controller, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func (m *MockService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService) ListSessions(ctx context.Context) []journey.View {
	return m.Called(ctx).Get(0).([]journey.View)
}

func (m *MockService) AskMentor(ctx context.Context, id uuid.UUID, message string, mode assistant.Mode, opts assistant.Options) (assistant.Reply, error) {
	args := m.Called(ctx, id, message, mode, opts)
	return args.Get(0).(assistant.Reply), args.Error(1)
}

func (m *MockService) Certificate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func sampleViews() []journey.View {
	return []journey.View{
		{
			SessionID:   uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			CurrentStep: journey.StepWallet,
			Progress:    33,
			Completed:   []journey.StepID{journey.StepRegistration},
			LearnerName: "Ada",
			Wallet:      journey.WalletView{Status: wallet.StatusConnecting},
		},
		{
			SessionID:   uuid.MustParse("00000000-0000-0000-0000-000000000002"),
			CurrentStep: journey.StepNFTReward,
			Progress:    100,
			Completed: []journey.StepID{
				journey.StepRegistration, journey.StepWallet, journey.StepLinkWallet,
				journey.StepAIIntro, journey.StepQuiz, journey.StepNFTReward,
			},
			LearnerName: "Grace",
			Quiz:        journey.QuizView{QuizState: journey.QuizState{Score: 3, Completed: true}, Attempts: 3},
			Wallet:      journey.WalletView{Status: wallet.StatusConnected, Address: "0xABC"},
			NFTMinted:   true,
			Receipt:     &mint.Receipt{TokenID: "token-9"},
		},
	}
}

func TestNewSessionRow(t *testing.T) {
	row := NewSessionRow(sampleViews()[1])
	assert.Equal(t, "Grace", row.LearnerName)
	assert.Equal(t, "nft-reward", row.CurrentStep)
	assert.Equal(t, 6, row.StepsDone)
	assert.Equal(t, 3, row.QuizScore)
	assert.Equal(t, "token-9", row.TokenID)
	assert.Len(t, row.values(), len(Columns))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleViews(), journey.StepQuiz)
	assert.Equal(t, 2, s.Sessions)
	assert.Equal(t, 1, s.Minted)
	assert.Equal(t, 1, s.QuizPassed)
	assert.Equal(t, map[string]int{"wallet": 1, "nft-reward": 1}, s.ByStep)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []SessionRow{NewSessionRow(sampleViews()[1])}
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "Grace", records[1][1])
	assert.Equal(t, "true", records[1][9])
}

func TestWriteExcel(t *testing.T) {
	var rows []SessionRow
	for _, v := range sampleViews() {
		rows = append(rows, NewSessionRow(v))
	}
	data, err := WriteExcel(rows, DefaultExcelOptions())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Sessions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Session", header)

	name, err := f.GetCellValue("Sessions", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Grace", name)
}

func TestSessionsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := new(MockService)
	svc.On("ListSessions", mock.Anything).Return(sampleViews())

	router := gin.New()
	NewHandler(svc, journey.StepQuiz, nil, nil).RegisterRoutes(router.Group("/api/v1"), func(c *gin.Context) { c.Next() })

	tests := []struct {
		query       string
		status      int
		contentType string
	}{
		{"", http.StatusOK, "application/json; charset=utf-8"},
		{"?format=csv", http.StatusOK, "text/csv"},
		{"?format=xlsx", http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"?format=pdf", http.StatusBadRequest, "application/json; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/sessions"+tt.query, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/sessions/summary", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"minted":1`)
}

type staticConnections []websocket.ConnectionInfo

func (s staticConnections) GetConnectionInfo() []websocket.ConnectionInfo { return s }

func TestConnectionsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conns := staticConnections{{ConnectionID: "c1", SessionID: "s1"}}
	tests := []struct {
		name   string
		lister ConnectionLister
		count  int
	}{
		{"with manager", conns, 1},
		{"without manager", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			NewHandler(new(MockService), journey.StepQuiz, tt.lister, nil).RegisterRoutes(router.Group("/api/v1"), func(c *gin.Context) { c.Next() })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/connections", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Connections []websocket.ConnectionInfo `json:"connections"`
				Count       int                        `json:"count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.count, body.Count)
			assert.Len(t, body.Connections, tt.count)
		})
	}
}
