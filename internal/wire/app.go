package wire

import (
	"Quayside/internal/client/api"
	"Quayside/internal/client/config"
	"Quayside/internal/client/handler"
	"Quayside/internal/job"
	"Quayside/internal/pkg/cron"
	"Quayside/internal/pkg/pushchan"
	"Quayside/internal/pkg/rest"
	"Quayside/internal/pkg/security"
	"Quayside/internal/service"
	"Quayside/internal/store"

	"github.com/gin-gonic/gin"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router      *gin.Engine
	Store       *store.ConversationStore
	Channel     *pushchan.Manager
	SyncService service.SyncService
	PushRouter  service.PushRouter
	CronManager *cron.Manager
}

func BuildApplication(cfg *config.Config) (*ApplicationContainer, error) {
	claims, err := security.ParseToken(cfg.Platform.Token)
	if err != nil {
		return nil, err
	}

	st := store.NewConversationStore(claims.UserID)
	platformAPI := rest.NewPlatformClient(&cfg.Platform)
	channel := pushchan.NewManager(cfg.Push, cfg.Platform.Token)

	presenceService := service.NewPresenceService(channel, st)
	syncService := service.NewSyncService(platformAPI, st, presenceService)
	outboxService := service.NewOutboxService(platformAPI, st)
	pushRouter := service.NewPushRouter(st, syncService, presenceService, channel)

	handlers := &api.HandlersGroup{
		ChatHandler:  handler.NewChatHandler(syncService, outboxService, presenceService, st),
		StateHandler: handler.NewStateHandler(st),
	}
	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		job.NewTypingSweepJob(st, cfg.Chat.TypingTTLSec),
		job.NewResyncJob(syncService),
		cfg.Chat.ResyncSpec,
	)

	return &ApplicationContainer{
		Router:      router,
		Store:       st,
		Channel:     channel,
		SyncService: syncService,
		PushRouter:  pushRouter,
		CronManager: cronMgr,
	}, nil
}
