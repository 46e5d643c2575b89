package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/apierr"
	"github.com/yourusername/webblog/internal/auth"
	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/events"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/page"
	"github.com/yourusername/webblog/internal/storage"
	"github.com/yourusername/webblog/internal/users"
)

// eventReader は保存済みセキュリティイベントを読み出します。
type eventReader interface {
	Recent(ctx context.Context, offset, limit int) (int, []events.Event, error)
}

// setupEvents は Redis があればキュー経由の永続化、なければログ出力のイベント送信先を用意します。
func setupEvents(cfg *config.Config, stores *storage.Stores, logger logging.Logger) (auth.EventSink, *events.Manager, error) {
	if stores.Redis == nil {
		return events.NewLogSink(logger), nil, nil
	}

	store := events.NewStore(stores.Redis, cfg.EventRetention(), cfg.EventMaxEntries)
	manager, err := events.NewManager(cfg, store, logger)
	if err != nil {
		return nil, nil, err
	}
	return manager, manager, nil
}

func securityEventsHandler(reader eventReader, pageSize int, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		index := page.ParseIndex(c.Query("page"))
		if reader == nil {
			c.JSON(http.StatusOK, gin.H{
				"page":   page.New(0, index, pageSize),
				"events": []events.Event{},
			})
			return
		}

		window := page.New(0, index, pageSize)
		total, list, err := reader.Recent(c.Request.Context(), window.Offset, window.Limit)
		if err != nil {
			apierr.Respond(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"page":   page.New(total, index, pageSize),
			"events": list,
		})
	}
}

func usersHandler(repo users.Repository, pageSize int, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		total, err := repo.Count(ctx)
		if err != nil {
			apierr.Respond(c, logger, err)
			return
		}
		p := page.Compute(total, c.Query("page"), pageSize)
		list, err := repo.List(ctx, p.Offset, p.Limit)
		if err != nil {
			apierr.Respond(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"page":  p,
			"users": auth.NewPrincipals(list),
		})
	}
}
