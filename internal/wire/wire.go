package wire

import (
	"Ripple/internal/api"
	"Ripple/internal/api/config"
	"Ripple/internal/api/handler"
	"Ripple/internal/job"
	"Ripple/internal/pkg/cron"
	"Ripple/internal/pkg/es"
	"Ripple/internal/pkg/kafka"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/realtime"
	"Ripple/internal/repository"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	CronMgr  *cron.Manager
	Producer *kafka.Producer
}

func BuildApplication(db *gorm.DB, mongoConn *mongoDB.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	postRepo := repository.NewPostRepo(db)
	postActionRepo := repository.NewPostActionRepo(db)
	convRepo := repository.NewConversationRepo(db)

	messageRepo := mongo.NewMessageRepo(mongoConn)
	notificationRepo := mongo.NewNotificationRepo(mongoConn)
	userES := es.NewUserRepo()

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(redis.GetRdbClient())
	notifier := service.NewNotifier(notificationRepo, hub, producer)

	userService := service.NewUserService(userRepo, userFollowRepo, userES)
	userFollowService := service.NewUserFollowService(userFollowRepo, userRepo, notifier)
	postService := service.NewPostService(postRepo, userRepo, postActionRepo)
	postActionService := service.NewPostActionService(postActionRepo, postRepo, notifier)
	messageService := service.NewMessageService(convRepo, messageRepo, userRepo, hub)
	notificationService := service.NewNotificationService(notificationRepo, userRepo)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		UserFollowHandler:   handler.NewUserFollowHandler(userFollowService),
		PostHandler:         handler.NewPostHandler(postService),
		PostActionHandler:   handler.NewPostActionHandler(postActionService),
		MessageHandler:      handler.NewMessageHandler(messageService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		WsHandler:           handler.NewWsHandler(hub, messageService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		job.NewCounterReconcileJob(postRepo, postActionRepo, userRepo, userFollowRepo),
		job.NewNotificationCleanJob(notificationRepo),
	)

	return &ApplicationContainer{
		Router:   router,
		DB:       db,
		CronMgr:  cronMgr,
		Producer: producer,
	}, nil
}
