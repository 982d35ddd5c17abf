package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-ingest-backend/internal/ingest"
	"attendance-ingest-backend/internal/model"
	"attendance-ingest-backend/internal/notification"
	"attendance-ingest-backend/internal/observability"
	"attendance-ingest-backend/internal/store"
)

const persistTimeout = 15 * time.Second

// deviceAck is the only response the terminal ever sees. The device retries
// aggressively on anything else, so even garbage is acknowledged.
func deviceAck() gin.H {
	return gin.H{"Response": gin.H{"StatusCode": 0, "StatusString": "Succeed"}}
}

// DevicePush handles every POST from the access-control terminal. The body is
// read as raw bytes because the device lies about Content-Type. Persistence
// happens after the ACK, in the background.
func (h *Handler) DevicePush(c *gin.Context) {
	observability.PushesReceived.Inc()
	receivedAt := time.Now()

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Error reading device push body: %v", err)
		c.JSON(http.StatusOK, deviceAck())
		return
	}
	log.Printf("Device push on %s: %s", c.Request.URL.Path, truncateForLog(raw))

	if !strings.Contains(c.Request.URL.Path, ingest.PushMarker) {
		// Heartbeats, photo uploads, and whatever else the firmware sends
		// still expect the ACK.
		c.JSON(http.StatusOK, deviceAck())
		return
	}

	push, err := ingest.ParsePush(raw)
	if err != nil {
		observability.MalformedPushes.Inc()
		log.Printf("Ignoring unparseable device push: %v", err)
		c.JSON(http.StatusOK, deviceAck())
		return
	}
	if push.Match == nil {
		// A verification push without matches records nothing.
		c.JSON(http.StatusOK, deviceAck())
		return
	}

	ev := ingest.BuildEvent(push, receivedAt, h.formatter)
	go h.persistEvent(ev)

	c.JSON(http.StatusOK, deviceAck())
}

// persistEvent runs after the device has been acknowledged. Failures are
// logged and counted; nothing here can reach the device.
func (h *Handler) persistEvent(ev model.AccessEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while persisting event %s: %v", ev.EventUID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := h.store.AppendEvent(ctx, &ev); err != nil {
		observability.PersistFailures.WithLabelValues("append").Inc()
		log.Printf("Error appending event for %s: %v", ev.PersonName, err)
	} else {
		observability.EventsStored.Inc()
		log.Printf("Stored access event: %s (id=%q) at %s", ev.PersonName, ev.PersonID, ev.Time)
	}

	outcome, err := h.store.MergeSummary(ctx, ev)
	if err != nil {
		observability.PersistFailures.WithLabelValues("merge").Inc()
		log.Printf("Error merging summary for %s on %s: %v", ev.PersonName, ev.Date, err)
		return
	}
	observability.MergeOutcomes.WithLabelValues(string(outcome)).Inc()

	if outcome == store.OutcomeCreated && h.notifier != nil {
		h.notifier.Dispatch(notification.Arrival{
			PersonName: ev.PersonName,
			Date:       ev.Date,
			Time:       ev.Time,
		})
	}
}

func truncateForLog(raw []byte) string {
	const max = 2048
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "...(truncated)"
}
