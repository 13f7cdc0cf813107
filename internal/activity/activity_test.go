package activity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockRecorder struct {
	mock.Mock
	mu      sync.Mutex
	entries []Entry
}

func (m *MockRecorder) Record(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type fakeDynamo struct {
	input *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.input = params
	return &dynamodb.PutItemOutput{}, nil
}

func registeredEvent() journey.Event {
	return journey.Event{
		SessionID: uuid.New(),
		Kind:      journey.EventRegistered,
		Step:      journey.StepRegistration,
		Detail:    map[string]interface{}{"email": "ada@example.com", "name": "Ada"},
		View:      journey.View{CurrentStep: journey.StepRegistration, Progress: 16},
		At:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewEntryDropsEmail(t *testing.T) {
	e := registeredEvent()
	entry, err := NewEntry(e)
	require.NoError(t, err)

	assert.Equal(t, e.SessionID, entry.SessionID)
	assert.Equal(t, "registered", entry.Kind)
	assert.Equal(t, "registration", entry.CurrentStep)
	assert.Equal(t, 16, entry.Progress)
	assert.Equal(t, e.At, entry.CreatedAt)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Detail, &detail))
	assert.Equal(t, map[string]interface{}{"name": "Ada"}, detail)
}

func TestNewEntryWithoutDetail(t *testing.T) {
	entry, err := NewEntry(journey.Event{SessionID: uuid.New(), Kind: journey.EventReset})
	require.NoError(t, err)
	assert.Nil(t, entry.Detail)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Equal(t, "journey_activity", entry.TableName())
}

func TestListenerRecordsInOrder(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("Record", mock.Anything, mock.Anything).Return(nil)

	l := NewListener(rec, 8, zap.NewNop())
	first := registeredEvent()
	second := first
	second.Kind = journey.EventStepAdvanced
	l.Publish(first)
	l.Publish(second)
	require.NoError(t, l.Close())

	rec.AssertNumberOfCalls(t, "Record", 2)
	assert.Equal(t, "registered", rec.entries[0].Kind)
	assert.Equal(t, "step_advanced", rec.entries[1].Kind)

	// after close events are ignored
	l.Publish(first)
	require.NoError(t, l.Close())
	rec.AssertNumberOfCalls(t, "Record", 2)
}

func TestListenerSurvivesRecorderErrors(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down"))

	l := NewListener(rec, 4, zap.NewNop())
	l.Publish(registeredEvent())
	l.Publish(registeredEvent())
	require.NoError(t, l.Close())

	rec.AssertNumberOfCalls(t, "Record", 2)
}

func TestDynamoRecorder(t *testing.T) {
	client := &fakeDynamo{}
	r := &DynamoRecorder{client: client, table: "journey-activity"}

	entry, err := NewEntry(registeredEvent())
	require.NoError(t, err)
	require.NoError(t, r.Record(context.Background(), entry))

	require.NotNil(t, client.input)
	assert.Equal(t, "journey-activity", *client.input.TableName)

	var item dynamoItem
	require.NoError(t, attributevalue.UnmarshalMap(client.input.Item, &item))
	assert.Equal(t, entry.SessionID.String(), item.SessionID)
	assert.Equal(t, "registered", item.Kind)
	assert.Equal(t, 16, item.Progress)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", item.CreatedAt)
	assert.JSONEq(t, `{"name":"Ada"}`, item.Detail)
}

func TestLogRecorder(t *testing.T) {
	entry, err := NewEntry(registeredEvent())
	require.NoError(t, err)
	assert.NoError(t, NewLogRecorder(nil).Record(context.Background(), entry))
}

type fakeTransport struct {
	req    *http.Request
	body   []byte
	status int
}

func (f *fakeTransport) Perform(req *http.Request) (*http.Response, error) {
	f.req = req
	if req.Body != nil {
		f.body, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: f.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"result":"created"}`)),
	}, nil
}

func TestElasticRecorder(t *testing.T) {
	transport := &fakeTransport{status: http.StatusCreated}
	r := &ElasticRecorder{transport: transport, index: "journey-activity"}

	entry, err := NewEntry(registeredEvent())
	require.NoError(t, err)
	require.NoError(t, r.Record(context.Background(), entry))

	assert.Equal(t, http.MethodPut, transport.req.Method)
	assert.Equal(t, "/journey-activity/_doc/"+entry.ID.String(), transport.req.URL.Path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(transport.body, &doc))
	assert.Equal(t, "registered", doc["kind"])

	transport.status = http.StatusBadRequest
	assert.Error(t, r.Record(context.Background(), entry))
}

type fakeCollection struct {
	doc interface{}
	err error
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.doc = document
	return &mongo.InsertOneResult{}, f.err
}

func TestMongoRecorder(t *testing.T) {
	coll := &fakeCollection{}
	r := &MongoRecorder{collection: coll}

	entry, err := NewEntry(registeredEvent())
	require.NoError(t, err)
	require.NoError(t, r.Record(context.Background(), entry))

	doc, ok := coll.doc.(bson.M)
	require.True(t, ok)
	assert.Equal(t, entry.ID.String(), doc["_id"])
	assert.Equal(t, "registered", doc["kind"])
	assert.Equal(t, bson.M{"name": "Ada"}, doc["detail"])

	coll.err = errors.New("not primary")
	assert.Error(t, r.Record(context.Background(), entry))
	assert.NoError(t, r.Close(context.Background()))
}
