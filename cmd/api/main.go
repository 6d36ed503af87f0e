package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/domain/sqlite"
	"drgroup/cmd/internal/domain/sqlite/repository"
	"drgroup/cmd/internal/http/handler"
	authmiddleware "drgroup/cmd/internal/http/middleware"
	"drgroup/cmd/internal/infrastructure/aws/storage"
	"drgroup/cmd/internal/infrastructure/aws/websocket"
	"drgroup/cmd/internal/infrastructure/firebase"
	"drgroup/cmd/internal/service"
	"drgroup/cmd/internal/service/jobs"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/uid"
	"drgroup/cmd/internal/utils/validators"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const envVarsPrefix = "/drgroup/prod/"

// stores groups the document store implementations picked by STORE_DRIVER.
type stores struct {
	commitments service.CommitmentRepository
	companies   service.CompanyRepository
	payments    service.PaymentRepository
	connections service.ConnectionRepository
	firebase    *firebase.App
}

func main() {
	// Loads env vars depending on environment
	if os.Getenv("GO_ENV") == "production" {
		loadProdEnv() // AWS SSM Parameter Store
	} else if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	validators.Register(validate)
	uid.Init(int64(utils.GetEnvInt("SNOWFLAKE_NODE", 1)))

	st, err := openStores(ctx)
	if err != nil {
		panic(err)
	}
	if st.firebase != nil {
		defer st.firebase.Close()
	}

	// Receipts are optional, payments still work without a bucket
	var s3Client storage.S3Client
	if bucket := utils.GetEnv("S3_BUCKET_NAME"); bucket != "" {
		s3Client, err = storage.NewStorageClient(ctx, utils.GetEnv("AWS_S3_REGION", "us-east-2"), bucket)
		if err != nil {
			panic(err)
		}
	} else {
		log.Warn("S3_BUCKET_NAME is not set, payment receipts are disabled")
	}

	var gateway websocket.GatewayClient = websocket.NoopGatewayClient{}
	if endpoint := utils.GetEnv("WS_GATEWAY_ENDPOINT"); endpoint != "" {
		gateway, err = websocket.NewAWSGatewayClient(ctx, endpoint, utils.GetEnv("WS_GATEWAY_REGION", "us-east-2"))
		if err != nil {
			panic(err)
		}
	}

	if poolID := utils.GetEnv("COGNITO_USER_POOL_ID"); poolID != "" {
		if err = utils.InitJWKS(utils.GetEnv("COGNITO_REGION", "us-east-2"), poolID); err != nil {
			panic(err)
		}
	} else {
		log.Warn("COGNITO_USER_POOL_ID is not set, requests are not authenticated")
	}

	engine := recurring.NewEngine(st.commitments)

	// Getting services
	wsService := service.NewWebSocketService(st.connections, gateway)
	commitmentService := service.NewCommitmentService(st.commitments, st.companies, st.payments, engine, wsService, validate)
	seriesService := service.NewSeriesService(st.commitments, st.companies, engine, wsService, validate)
	paymentService := service.NewPaymentService(st.payments, st.commitments, wsService, s3Client, validate)
	companyService := service.NewCompanyService(st.companies, st.commitments, validate)
	exportService := service.NewExportService(st.commitments, engine)

	// Getting handlers
	commitmentRoutes := handler.NewCommitmentDefault(commitmentService, exportService)
	seriesRoutes := handler.NewSeriesDefault(seriesService)
	paymentRoutes := handler.NewPaymentDefault(paymentService)
	companyRoutes := handler.NewCompanyDefault(companyService)
	wsRoutes := handler.NewWSDefault(wsService)

	// Jobs
	go jobs.NewConnectionCleaner(wsService).Start(ctx)
	if watcher := newExtensionWatcher(ctx, seriesService, wsService, st.firebase); watcher != nil {
		if err = watcher.Start(); err != nil {
			panic(err)
		}
		defer watcher.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("12M"))

	auth := authmiddleware.NewAuthMiddleware(&authmiddleware.AuthMiddlewareConfig{
		Disabled: !utils.AuthEnabled(),
	})
	api := e.Group("/api", auth)

	// Commitments
	api.GET("/commitments", commitmentRoutes.GetCommitments)
	api.GET("/commitments/audit", commitmentRoutes.AuditCommitments)
	api.GET("/commitments/export", commitmentRoutes.ExportCommitments)
	api.GET("/commitments/:id", commitmentRoutes.GetCommitment)
	api.POST("/commitments", commitmentRoutes.CreateCommitment)
	api.PATCH("/commitments/:id", commitmentRoutes.UpdateCommitment)
	api.DELETE("/commitments/:id", commitmentRoutes.DeleteCommitment)

	// Recurring series
	api.POST("/series/preview", seriesRoutes.PreviewSeries)
	api.GET("/series/extensions", seriesRoutes.CheckExtensions)
	api.POST("/series/extensions", seriesRoutes.ExtendSeries)
	api.GET("/periodicities", seriesRoutes.GetPeriodicities)
	api.GET("/periodicities/:periodicity/next-dates", seriesRoutes.GetNextDates)

	// Companies
	api.GET("/companies", companyRoutes.GetCompanies)
	api.GET("/companies/:id", companyRoutes.GetCompany)
	api.POST("/companies", companyRoutes.CreateCompany)
	api.PATCH("/companies/:id", companyRoutes.UpdateCompany)

	// Payments
	api.GET("/payments", paymentRoutes.GetPayments)
	api.POST("/payments", paymentRoutes.CreatePayment)
	api.GET("/payments/:id/receipt", paymentRoutes.GetReceipt)
	api.DELETE("/payments/:id", paymentRoutes.DeletePayment)

	// API Gateway websocket integration
	e.POST("/ws/connect", wsRoutes.HandleConnect, auth)
	e.POST("/ws/disconnect", wsRoutes.HandleDisconnect)
	e.POST("/ws/message", wsRoutes.HandleMessage)

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)

	go func() {
		if err := e.Start(utils.GetEnv("HTTP_ADDR", ":7070")); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down server: %v", err)
	}
}

// openStores wires the commitment, company and payment stores to gorm or
// Firestore. Websocket connections always live in the relational database.
func openStores(ctx context.Context) (*stores, error) {
	driver := utils.GetEnv("STORE_DRIVER", sqlite.DriverSQLite)

	dsn := utils.GetEnv("SQLITE_PATH")
	if driver == sqlite.DriverPostgres {
		dsn = utils.GetEnv("DATABASE_URL")
	}

	db, err := sqlite.Init(driver, dsn)
	if err != nil {
		return nil, err
	}

	st := &stores{connections: repository.NewConnectionRepository(db)}
	if driver != sqlite.DriverFirestore {
		st.commitments = repository.NewCommitmentRepository(db)
		st.companies = repository.NewCompanyRepository(db)
		st.payments = repository.NewPaymentRepository(db)
		log.Infof("using %s document store", driver)
		return st, nil
	}

	app, err := firebase.NewApp(ctx, utils.GetEnv("FIREBASE_CREDENTIALS_FILE"), utils.GetEnv("FIREBASE_PROJECT_ID"))
	if err != nil {
		return nil, err
	}

	st.firebase = app
	st.commitments = firebase.NewCommitmentStore(app.Firestore)
	st.companies = firebase.NewCompanyStore(app.Firestore)
	st.payments = firebase.NewPaymentStore(app.Firestore)
	log.Info("using firestore document store")
	return st, nil
}

// newExtensionWatcher returns nil when no schedule is configured. Topic
// notifications are only sent on Firebase deployments.
func newExtensionWatcher(ctx context.Context, checker jobs.ExtensionChecker, events jobs.EventBroadcaster, app *firebase.App) *jobs.ExtensionWatcher {
	schedule := utils.GetEnv("EXTENSION_WATCH_SCHEDULE")
	if schedule == "" {
		return nil
	}

	var notifier jobs.TopicNotifier
	if app != nil {
		n, err := app.Notifier(ctx)
		if err != nil {
			log.Warnf("extension notifications disabled: %v", err)
		} else {
			notifier = n
		}
	}

	lookahead := utils.GetEnvInt("EXTENSION_LOOKAHEAD_MONTHS", recurring.DefaultLookaheadMonths)
	return jobs.NewExtensionWatcher(schedule, lookahead, checker, events, notifier)
}

func loadProdEnv() {
	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(utils.GetEnv("AWS_REGION", "us-east-2")))
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	prefixLength := len(envVarsPrefix)
	loaded := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			log.Fatalf("unable to load prod environment, %v", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			key := (*param.Name)[prefixLength:]
			if enverr := os.Setenv(key, *param.Value); enverr != nil {
				log.Fatalf("unable to set environment variable, %v", enverr)
			}
			loaded++
		}
	}
	log.Debugf("loaded %d prod environment variables", loaded)
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
