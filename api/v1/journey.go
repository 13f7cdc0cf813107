package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"superlearn/learning-portal/learning-portal-backend/internal/activity"
	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/auth"
	"superlearn/learning-portal/learning-portal-backend/internal/certificate"
	"superlearn/learning-portal/learning-portal-backend/internal/config"
	"superlearn/learning-portal/learning-portal-backend/internal/journey"
	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/notifications"
	"superlearn/learning-portal/learning-portal-backend/internal/notifications/websocket"
	"superlearn/learning-portal/learning-portal-backend/internal/reports"
	"superlearn/learning-portal/learning-portal-backend/internal/sessions"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
	"superlearn/learning-portal/learning-portal-backend/pkg/cloud"
	"superlearn/learning-portal/learning-portal-backend/pkg/storage"
)

// JourneyAPI holds the journey API dependencies
type JourneyAPI struct {
	JourneyHandler   *journey.Handler
	AssistantHandler *assistant.Handler
	ReportsHandler   *reports.Handler
	Service          journey.Service
	Store            *sessions.Store[*journey.Controller]
	Sweeper          *sessions.Sweeper
	Notifications    *notifications.Service
	Activity         *activity.Listener
	WebSocket        *websocket.Manager

	adminToken string
	db         *gorm.DB
	mongo      *activity.MongoRecorder
	logger     *zap.Logger
}

// SetupJourneyAPI builds the journey API from configuration. AWS is only
// contacted when a bucket, sender, topic or DynamoDB table is configured.
func SetupJourneyAPI(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*JourneyAPI, error) {
	api := &JourneyAPI{adminToken: cfg.Security.AdminToken, logger: logger}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg == nil {
			c, err := cloud.LoadAWSConfig(ctx, cfg.AWS)
			if err != nil {
				return aws.Config{}, err
			}
			awsCfg = &c
		}
		return *awsCfg, nil
	}

	// Badge metadata
	s3 := storage.NewMemoryS3Client()
	if cfg.Storage.Bucket != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		s3 = storage.NewS3Client(c, cfg.AWS.Endpoint)
	}
	minter := mint.NewSimulatedMinter(cfg.Minter(), s3, logger)

	// Assistant
	backend, provider, err := assistant.New(ctx, cfg.Assistant, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}
	logger.Info("Assistant configured", zap.String("provider", provider))

	// Live updates and badge announcements
	api.WebSocket = websocket.NewManager(logger)
	var mailer notifications.Mailer
	if cfg.Email.From != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		mailer = notifications.NewSESMailer(c, cfg.Email.From)
	}
	var publisher notifications.Publisher
	if cfg.SNS.TopicARN != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		publisher = notifications.NewSNSPublisher(c, cfg.SNS.TopicARN)
	}
	api.Notifications = notifications.NewService(api.WebSocket, mailer, publisher, logger)

	// Activity log
	recorder, err := api.activityRecorder(ctx, cfg, loadAWS)
	if err != nil {
		return nil, err
	}
	api.Activity = activity.NewListener(recorder, cfg.Activity.Buffer, logger)

	// Sessions
	api.Store = sessions.NewStore[*journey.Controller](cfg.Sessions.IdleTTL, cfg.Sessions.MaxSessions)
	api.Sweeper = sessions.NewSweeper(api.Store, cfg.Sessions.SweepSchedule, logger)

	service, err := journey.NewService(
		cfg.Journey.Flow(),
		api.Store,
		wallet.NewSimulatedFactory(cfg.Journey.Wallet()),
		minter,
		assistant.NewMentor(backend, logger),
		certificate.NewGenerator(certificate.DefaultOptions()),
		journey.Listeners{api.Notifications, api.Activity},
		logger,
	)
	if err != nil {
		return nil, err
	}
	api.Service = service

	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		return nil, err
	}

	api.JourneyHandler = journey.NewHandler(service, tokens, api.WebSocket, logger)
	api.AssistantHandler = assistant.NewHandler(backend, provider, logger)
	api.ReportsHandler = reports.NewHandler(service, cfg.Journey.Flow().QuizStep, api.WebSocket, logger)
	return api, nil
}

func (api *JourneyAPI) activityRecorder(ctx context.Context, cfg *config.Config, loadAWS func() (aws.Config, error)) (activity.Recorder, error) {
	switch cfg.Activity.Backend {
	case config.ActivityPostgres:
		db, err := activity.Open(cfg.Database.GetDatabaseURL())
		if err != nil {
			return nil, err
		}
		api.db = db
		return activity.NewRepository(db)
	case config.ActivityDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return activity.NewDynamoRecorder(c, cfg.Activity.DynamoTable), nil
	case config.ActivityElasticsearch:
		return activity.NewElasticRecorder(cfg.Activity.ElasticAddresses, cfg.Activity.ElasticIndex)
	case config.ActivityMongoDB:
		rec, err := activity.NewMongoRecorder(ctx, cfg.Activity.MongoURI, cfg.Activity.MongoDatabase, cfg.Activity.MongoCollection)
		if err != nil {
			return nil, err
		}
		api.mongo = rec
		return rec, nil
	default:
		return activity.NewLogRecorder(api.logger), nil
	}
}

// Start begins expiring idle sessions
func (api *JourneyAPI) Start() error {
	return api.Sweeper.Start()
}

// Close stops the sweeper, closes every session and flushes the listeners
func (api *JourneyAPI) Close() {
	api.Sweeper.Stop()
	api.Store.CloseAll()
	api.Notifications.Close()
	api.Activity.Close()
	api.WebSocket.Close()

	if api.db != nil {
		if sqlDB, err := api.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if api.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := api.mongo.Close(ctx); err != nil {
			api.logger.Warn("Failed to disconnect mongodb", zap.Error(err))
		}
	}
}

// RegisterJourneyRoutes registers the journey routes on the router group
func RegisterJourneyRoutes(router *gin.RouterGroup, api *JourneyAPI) {
	api.JourneyHandler.RegisterRoutes(router)
	api.AssistantHandler.RegisterRoutes(router)
	if api.adminToken != "" {
		api.ReportsHandler.RegisterRoutes(router, auth.RequireAdmin(api.adminToken))
	}
}
