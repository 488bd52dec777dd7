package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/metrics"
)

const archiveTimeout = 30 * time.Second

// generateImage: модель -> задача -> опрос статуса -> фото
func (app *BotApp) generateImage(ctx context.Context, ev Event) {
	start := app.now()
	waitID := app.send(ev.ChatID, MsgWaitImage, nil)
	defer app.dropMessage(ev.ChatID, waitID)

	status, data := app.runImageJob(ctx, ev)
	metrics.RecordBackend("image", status, app.now().Sub(start).Seconds())

	switch status {
	case "no_job":
		app.send(ev.ChatID, MsgImageOverload, MainKeyboard())
		return
	case "ok":
	default:
		app.send(ev.ChatID, MsgImageFailed, MainKeyboard())
		return
	}

	name := fmt.Sprintf("%d_%d.jpg", ev.UserID, start.Unix())
	if _, err := app.messenger().SendPhoto(ev.ChatID, name, data, ""); err != nil {
		app.log.Warn("[image] send photo failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
		app.send(ev.ChatID, MsgImageFailed, MainKeyboard())
		return
	}

	app.goAsync(func() {
		actx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if url, err := app.archive.SaveImage(actx, ev.UserID, data, name); err != nil {
			app.log.Warn("[image] archive failed", zap.Error(err))
		} else if url != "" {
			app.log.Info("[image] archived", zap.String("url", url))
		}
	})
}

// runImageJob возвращает статус для метрик и декодированную картинку
func (app *BotApp) runImageJob(ctx context.Context, ev Event) (string, []byte) {
	modelID, err := app.images.ResolveModel(ctx)
	if err != nil {
		app.log.Warn("[image] resolve model failed", zap.Error(err))
		return "error", nil
	}

	jobID, err := app.images.Submit(ctx, ev.Text, modelID, app.opts.Submit)
	if err != nil {
		app.log.Warn("[image] submit failed", zap.Error(err))
		return "error", nil
	}
	if jobID == "" {
		return "no_job", nil
	}
	app.log.Info("[image] job submitted", zap.Int64("user_id", ev.UserID), zap.String("job_id", jobID))

	images, err := app.images.AwaitCompletion(ctx, jobID, app.opts.Poll)
	if err != nil {
		app.log.Warn("[image] job failed", zap.String("job_id", jobID), zap.Error(err))
		return "error", nil
	}
	if len(images) == 0 {
		return "timeout", nil
	}

	data, err := base64.StdEncoding.DecodeString(images[0])
	if err != nil {
		app.log.Warn("[image] bad base64", zap.String("job_id", jobID), zap.Error(err))
		return "error", nil
	}
	if len(data) == 0 {
		return "error", nil
	}
	return "ok", data
}
