package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/cart"
	"github.com/leavalz/Natural-Triade-Shop/internal/config"
	"github.com/leavalz/Natural-Triade-Shop/internal/handler"
	"github.com/leavalz/Natural-Triade-Shop/internal/metrics"
	"github.com/leavalz/Natural-Triade-Shop/internal/notify"
	"github.com/leavalz/Natural-Triade-Shop/internal/remote"
	"github.com/leavalz/Natural-Triade-Shop/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	client, err := remote.New(remote.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	feed := notify.NewFeed(0)

	sessionStore := session.New(ctx, client, infra.State, session.WithNotifier(feed))
	cartStore := cart.New(client, feed)

	client.UseCredentials(sessionStore)
	client.OnUnauthorized(sessionStore.Expire)

	// a new session never sees the previous one's cart
	sessionStore.OnEnd(func(context.Context) {
		cartStore.Reset()
	})

	h := handler.NewHandler(sessionStore, cartStore, client, feed)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery(), metrics.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h.RegisterRoutes(router)

	return router, infra.Close, nil
}
