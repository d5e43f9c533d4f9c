package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garment-erp/production-ledger/internal/application"
	"github.com/garment-erp/production-ledger/internal/config"
	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/internal/infrastructure/memory"
	"github.com/garment-erp/production-ledger/pkg/events"
	"github.com/garment-erp/production-ledger/pkg/logging"
	"github.com/garment-erp/production-ledger/pkg/metrics"
	"github.com/garment-erp/production-ledger/pkg/middleware"
)

const serviceName = "production-ledger"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig(cfg.Service.Name)
	logConfig.Level = logging.LogLevel(cfg.Service.LogLevel)
	logConfig.Environment = cfg.Service.Environment
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting production-ledger API")

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	lotStore := memory.NewLotStore()
	issueStore := memory.NewIssueStore()
	stockStore := memory.NewStockStore()
	fgStore := memory.NewFGStore()
	logger.Info("In-memory stores initialized")

	ids := domain.NewUUIDSource(nil)

	var publisher events.Publisher
	var kafkaPublisher *events.KafkaPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = events.NewKafkaPublisher(&events.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Kafka publisher initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		bus := events.NewBus()
		bus.Subscribe("", func(ctx context.Context, envelope events.Envelope) {
			logger.Event(ctx, envelope.Type, map[string]any{
				"eventId": envelope.ID,
				"subject": envelope.Subject,
			})
		})
		publisher = bus
		logger.Info("Kafka disabled, finance events stay on the in-process bus")
	}

	transitionService := application.NewTransitionService(lotStore, publisher, m, logger, ids, nil)
	issueService := application.NewIssueService(issueStore, m, logger, ids, nil)
	stockService := application.NewStockService(stockStore, m, logger, ids, nil)
	fgService := application.NewFGService(fgStore, transitionService, publisher, m, logger, ids, nil)

	if cfg.Seed.File != "" {
		if err := loadSeed(context.Background(), cfg.Seed.File, transitionService, stockService, fgService, logger); err != nil {
			logger.WithError(err).Error("Failed to load seed file")
			os.Exit(1)
		}
	}

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		lots := api.Group("/lots")
		{
			lots.POST("", createLotHandler(transitionService, logger))
			lots.GET("", listLotsHandler(transitionService, logger))
			lots.GET("/ledger", listWipLedgerHandler(transitionService, logger))
			lots.GET("/:lotNumber", getLotHandler(transitionService, logger))
			lots.GET("/:lotNumber/ledger", getLotLedgerHandler(transitionService, logger))
			lots.POST("/:lotNumber/hold", holdLotHandler(transitionService, logger))
			lots.POST("/:lotNumber/release", releaseLotHandler(transitionService, logger))
			lots.POST("/:lotNumber/transfer", transferLotHandler(transitionService, logger))
			lots.POST("/:lotNumber/rework", reworkLotHandler(transitionService, logger))
			lots.POST("/:lotNumber/finish", finishLotHandler(transitionService, logger))
			lots.POST("/:lotNumber/consume", consumeMaterialHandler(transitionService, logger))
		}

		issues := api.Group("/issues")
		{
			issues.POST("", createIssueHandler(issueService, logger))
			issues.GET("", listIssuesHandler(issueService, logger))
			issues.GET("/:issueNumber", getIssueHandler(issueService, logger))
			issues.GET("/:issueNumber/ledger", getIssueLedgerHandler(issueService, logger))
			issues.POST("/:issueNumber/approve", approveIssueHandler(issueService, logger))
			issues.POST("/:issueNumber/reject", rejectIssueHandler(issueService, logger))
			issues.POST("/:issueNumber/returns", recordIssueReturnHandler(issueService, logger))
		}

		stock := api.Group("/stock")
		{
			stock.POST("", addRawStockHandler(stockService, logger))
			stock.POST("/damaged", addDamagedStockHandler(stockService, logger))
			stock.GET("", listStockHandler(stockService, logger))
			stock.GET("/ledger", listStockLedgerHandler(stockService, logger))
		}

		fg := api.Group("/fg")
		{
			fg.POST("/packings", recordPackingCloseHandler(fgService, logger))
			fg.POST("/repack", repackCartonHandler(fgService, logger))
			fg.GET("/stock", listFGStockHandler(fgService, logger))
			fg.GET("/ledger", listFGLedgerHandler(fgService, logger))
			fg.GET("/aging", agingHandler(fgService, logger))
			fg.GET("/dead-stock", deadStockHandler(fgService, logger))
			fg.POST("/valuation", valuationHandler(fgService, logger))

			fg.POST("/blocks", blockStyleHandler(fgService, logger))
			fg.GET("/blocks", listBlockedHandler(fgService, logger))
			fg.DELETE("/blocks/:styleId", unblockStyleHandler(fgService, logger))

			fg.POST("/dispatches", createDispatchHandler(fgService, logger))
			fg.GET("/dispatches", listDispatchesHandler(fgService, logger))
			fg.GET("/dispatches/:dispatchId", getDispatchHandler(fgService, logger))
			fg.POST("/dispatches/:dispatchId/confirm", confirmDispatchHandler(fgService, logger))

			fg.POST("/returns", processReturnHandler(fgService, logger))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

func createLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LotNumber    string `json:"lotNumber" binding:"required,lot_number"`
			ParentLot    string `json:"parentLot"`
			StyleID      string `json:"styleId" binding:"required,style_code"`
			Color        string `json:"color" binding:"required"`
			Size         string `json:"size" binding:"required"`
			UOM          string `json:"uom" binding:"required"`
			TotalQty     int    `json:"totalQty" binding:"required,gt=0"`
			OpeningStage string `json:"openingStage" binding:"required,process_stage"`
			Actor        string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		lot, err := service.CreateLot(c.Request.Context(), application.CreateLotCommand{
			LotNumber:    req.LotNumber,
			ParentLot:    req.ParentLot,
			StyleID:      req.StyleID,
			Color:        req.Color,
			Size:         req.Size,
			UOM:          req.UOM,
			TotalQty:     req.TotalQty,
			OpeningStage: domain.ProcessStage(req.OpeningStage),
			Actor:        req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, lot)
	}
}

func listLotsHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lots, err := service.ListLots(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"lots": lots, "count": len(lots)})
	}
}

func getLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lot, err := service.GetLot(c.Request.Context(), c.Param("lotNumber"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, lot)
	}
}

func getLotLedgerHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.GetLedgerForLot(c.Request.Context(), c.Param("lotNumber"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	}
}

func listWipLedgerHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.ListLedger(c.Request.Context(), ledgerFilterFromQuery(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	}
}

func holdLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason" binding:"required"`
			Actor  string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		lot, err := service.HoldLot(c.Request.Context(), application.HoldLotCommand{
			LotNumber: c.Param("lotNumber"),
			Reason:    req.Reason,
			Actor:     req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, lot)
	}
}

func releaseLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Actor string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		lot, err := service.ReleaseLot(c.Request.Context(), application.ReleaseLotCommand{
			LotNumber: c.Param("lotNumber"),
			Actor:     req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, lot)
	}
}

func transferLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Destination string `json:"destination" binding:"required"`
			Qty         int    `json:"qty" binding:"required,gt=0"`
			Reason      string `json:"reason"`
			Actor       string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		lot, err := service.TransferLot(c.Request.Context(), application.TransferLotCommand{
			LotNumber:   c.Param("lotNumber"),
			Destination: req.Destination,
			Qty:         req.Qty,
			Reason:      req.Reason,
			Actor:       req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, lot)
	}
}

func reworkLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FromProcess string `json:"fromProcess" binding:"required,process_stage"`
			ToProcess   string `json:"toProcess" binding:"required,process_stage"`
			Qty         int    `json:"qty" binding:"required,gt=0"`
			Remarks     string `json:"remarks"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		lot, err := service.ReworkLot(c.Request.Context(), application.ReworkLotCommand{
			LotNumber:   c.Param("lotNumber"),
			FromProcess: domain.ProcessStage(req.FromProcess),
			ToProcess:   domain.ProcessStage(req.ToProcess),
			Qty:         req.Qty,
			Remarks:     req.Remarks,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, lot)
	}
}

func finishLotHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FinishedQty int    `json:"finishedQty" binding:"required,gt=0"`
			Actor       string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		lot, err := service.FinishLot(c.Request.Context(), application.FinishLotCommand{
			LotNumber:   c.Param("lotNumber"),
			FinishedQty: req.FinishedQty,
			Actor:       req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, lot)
	}
}

func consumeMaterialHandler(service *application.TransitionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			MaterialID  string          `json:"materialId" binding:"required"`
			PlannedQty  decimal.Decimal `json:"plannedQty"`
			ConsumedQty decimal.Decimal `json:"consumedQty"`
			UOM         string          `json:"uom" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		entry, err := service.ConsumeMaterial(c.Request.Context(), application.ConsumeMaterialCommand{
			LotNumber:   c.Param("lotNumber"),
			MaterialID:  req.MaterialID,
			PlannedQty:  req.PlannedQty,
			ConsumedQty: req.ConsumedQty,
			UOM:         req.UOM,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func createIssueHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IssueDate time.Time `json:"issueDate" binding:"required"`
			Process   string    `json:"process" binding:"required,process_stage"`
			Items     []struct {
				MaterialCode string `json:"materialCode" binding:"required"`
				LotNumber    string `json:"lotNumber" binding:"required,lot_number"`
				IssuedQty    int    `json:"issuedQty" binding:"required,gt=0"`
				UOM          string `json:"uom" binding:"required"`
			} `json:"items" binding:"required,min=1,dive"`
			Actor string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		items := make([]application.IssueLineCommand, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, application.IssueLineCommand{
				MaterialCode: item.MaterialCode,
				LotNumber:    item.LotNumber,
				IssuedQty:    item.IssuedQty,
				UOM:          item.UOM,
			})
		}

		issue, err := service.CreateIssue(c.Request.Context(), application.CreateIssueCommand{
			IssueDate: req.IssueDate,
			Process:   domain.ProcessStage(req.Process),
			Items:     items,
			Actor:     req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, issue)
	}
}

func listIssuesHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		issues, err := service.ListIssues(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
	}
}

func getIssueHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		issue, err := service.GetIssue(c.Request.Context(), c.Param("issueNumber"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, issue)
	}
}

func getIssueLedgerHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.GetIssueLedger(c.Request.Context(), c.Param("issueNumber"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	}
}

func approveIssueHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Approver string `json:"approver" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		issue, err := service.ApproveIssue(c.Request.Context(), application.ApproveIssueCommand{
			IssueNumber: c.Param("issueNumber"),
			Approver:    req.Approver,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, issue)
	}
}

func rejectIssueHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		issue, err := service.RejectIssue(c.Request.Context(), application.RejectIssueCommand{
			IssueNumber: c.Param("issueNumber"),
			Reason:      req.Reason,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, issue)
	}
}

func recordIssueReturnHandler(service *application.IssueService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			MaterialCode string `json:"materialCode" binding:"required"`
			ReturnedQty  int    `json:"returnedQty" binding:"required,gt=0"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		issue, err := service.RecordReturn(c.Request.Context(), application.RecordIssueReturnCommand{
			IssueNumber:  c.Param("issueNumber"),
			MaterialCode: req.MaterialCode,
			ReturnedQty:  req.ReturnedQty,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, issue)
	}
}

func addRawStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ItemID    string `json:"itemId" binding:"required"`
			LotNumber string `json:"lotNumber" binding:"required,lot_number"`
			Qty       int    `json:"qty" binding:"required,gt=0"`
			UOM       string `json:"uom" binding:"required"`
			Reason    string `json:"reason"`
			Actor     string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		stock, err := service.AddToRawStock(c.Request.Context(), application.AddRawStockCommand{
			ItemID:    req.ItemID,
			LotNumber: req.LotNumber,
			Qty:       req.Qty,
			UOM:       req.UOM,
			Reason:    req.Reason,
			Actor:     req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, stock)
	}
}

func addDamagedStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ItemID    string `json:"itemId" binding:"required"`
			LotNumber string `json:"lotNumber" binding:"required,lot_number"`
			Qty       int    `json:"qty" binding:"required,gt=0"`
			UOM       string `json:"uom" binding:"required"`
			Reason    string `json:"reason" binding:"required"`
			Actor     string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		entry, err := service.AddToDamagedStock(c.Request.Context(), application.AddDamagedStockCommand{
			ItemID:    req.ItemID,
			LotNumber: req.LotNumber,
			Qty:       req.Qty,
			UOM:       req.UOM,
			Reason:    req.Reason,
			Actor:     req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stock, err := service.ListStock(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stock": stock, "count": len(stock)})
	}
}

func listStockLedgerHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.ListStockLedger(c.Request.Context(), ledgerFilterFromQuery(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	}
}

func recordPackingCloseHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PackingNo string `json:"packingNo" binding:"required"`
			Items     []struct {
				StyleID   string `json:"styleId" binding:"required,style_code"`
				Color     string `json:"color" binding:"required"`
				Warehouse string `json:"warehouse" binding:"required"`
				Size      string `json:"size" binding:"required"`
				Cartons   int    `json:"cartons" binding:"gte=0"`
				Pieces    int    `json:"pieces" binding:"required,gt=0"`
			} `json:"items" binding:"required,min=1,dive"`
			Actor string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		items := make([]application.PackingItemCommand, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, application.PackingItemCommand{
				StyleID:   item.StyleID,
				Color:     item.Color,
				Warehouse: item.Warehouse,
				Size:      item.Size,
				Cartons:   item.Cartons,
				Pieces:    item.Pieces,
			})
		}

		if err := service.RecordPackingClose(c.Request.Context(), application.RecordPackingCloseCommand{
			PackingNo: req.PackingNo,
			Items:     items,
			Actor:     req.Actor,
		}); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"packingNo": req.PackingNo, "items": len(items)})
	}
}

func repackCartonHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PackingNo     string              `json:"packingNo" binding:"required"`
			StyleID       string              `json:"styleId" binding:"required,style_code"`
			Warehouse     string              `json:"warehouse" binding:"required"`
			OriginalItems []domain.RepackItem `json:"originalItems" binding:"required"`
			NewItems      []domain.RepackItem `json:"newItems" binding:"required"`
			Actor         string              `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		if err := service.RepackCarton(c.Request.Context(), application.RepackCartonCommand{
			PackingNo:     req.PackingNo,
			StyleID:       req.StyleID,
			Warehouse:     req.Warehouse,
			OriginalItems: req.OriginalItems,
			NewItems:      req.NewItems,
			Actor:         req.Actor,
		}); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"packingNo": req.PackingNo})
	}
}

func listFGStockHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stock, err := service.ListStock(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stock": stock, "count": len(stock)})
	}
}

func listFGLedgerHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.ListLedger(c.Request.Context(), ledgerFilterFromQuery(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	}
}

func agingHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := service.ComputeAging(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"buckets": buckets})
	}
}

func deadStockHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stock, err := service.ListDeadStock(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stock": stock, "count": len(stock)})
	}
}

func valuationHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Method   string                     `json:"method" binding:"required,valuation_method"`
			PriceMap map[string]decimal.Decimal `json:"priceMap"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		report, err := service.Valuation(c.Request.Context(), application.ValuationQuery{
			Method:   domain.ValuationMethod(req.Method),
			PriceMap: req.PriceMap,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func blockStyleHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StyleID string `json:"styleId" binding:"required,style_code"`
			Reason  string `json:"reason" binding:"required"`
			Actor   string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		if err := service.BlockStyle(c.Request.Context(), application.BlockStyleCommand{
			StyleID: req.StyleID,
			Reason:  req.Reason,
			Actor:   req.Actor,
		}); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"styleId": req.StyleID, "blocked": true})
	}
}

func unblockStyleHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.Query("actor")
		if err := service.UnblockStyle(c.Request.Context(), application.UnblockStyleCommand{
			StyleID: c.Param("styleId"),
			Actor:   actor,
		}); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"styleId": c.Param("styleId"), "blocked": false})
	}
}

func listBlockedHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blocked, err := service.ListBlocked(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"blocked": blocked, "count": len(blocked)})
	}
}

func createDispatchHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DispatchNo  string                      `json:"dispatchNo" binding:"required"`
			CustomerID  string                      `json:"customerId" binding:"required"`
			Allocations []domain.DispatchAllocation `json:"allocations" binding:"required,min=1"`
			Actor       string                      `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		dispatch, err := service.CreateDispatch(c.Request.Context(), application.CreateDispatchCommand{
			DispatchNo:  req.DispatchNo,
			CustomerID:  req.CustomerID,
			Allocations: req.Allocations,
			Actor:       req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dispatch)
	}
}

func listDispatchesHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatches, err := service.ListDispatches(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"dispatches": dispatches, "count": len(dispatches)})
	}
}

func getDispatchHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatch, err := service.GetDispatch(c.Request.Context(), c.Param("dispatchId"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dispatch)
	}
}

func confirmDispatchHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Actor string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		dispatch, err := service.ConfirmDispatch(c.Request.Context(), application.ConfirmDispatchCommand{
			DispatchID: c.Param("dispatchId"),
			Actor:      req.Actor,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dispatch)
	}
}

func processReturnHandler(service *application.FGService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DispatchNo string `json:"dispatchNo" binding:"required"`
			Route      string `json:"route" binding:"required,return_route"`
			Reason     string `json:"reason" binding:"required"`
			Returns    []struct {
				StyleID     string `json:"styleId" binding:"required,style_code"`
				Color       string `json:"color" binding:"required"`
				Warehouse   string `json:"warehouse" binding:"required"`
				Size        string `json:"size" binding:"required"`
				Cartons     int    `json:"cartons" binding:"gte=0"`
				Pieces      int    `json:"pieces" binding:"required,gt=0"`
				LotNumber   string `json:"lotNumber"`
				FromProcess string `json:"fromProcess"`
				ToProcess   string `json:"toProcess"`
			} `json:"returns" binding:"required,min=1,dive"`
			Actor string `json:"actor" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.AbortWithAppError(c, appErr)
			return
		}

		returns := make([]application.ReturnLineCommand, 0, len(req.Returns))
		for _, line := range req.Returns {
			returns = append(returns, application.ReturnLineCommand{
				StyleID:     line.StyleID,
				Color:       line.Color,
				Warehouse:   line.Warehouse,
				Size:        line.Size,
				Cartons:     line.Cartons,
				Pieces:      line.Pieces,
				LotNumber:   line.LotNumber,
				FromProcess: domain.ProcessStage(line.FromProcess),
				ToProcess:   domain.ProcessStage(line.ToProcess),
			})
		}

		if err := service.ProcessReturn(c.Request.Context(), application.ProcessReturnCommand{
			DispatchNo: req.DispatchNo,
			Returns:    returns,
			Reason:     req.Reason,
			Route:      domain.ReturnRoute(req.Route),
			Actor:      req.Actor,
		}); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"dispatchNo": req.DispatchNo, "route": req.Route})
	}
}

func ledgerFilterFromQuery(c *gin.Context) domain.LedgerFilter {
	return domain.LedgerFilter{
		SubjectKey: c.Query("subject"),
		Action:     domain.Action(c.Query("action")),
	}
}
