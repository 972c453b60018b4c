package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"bingocall/pkg/calibration"
	"bingocall/pkg/history"
	"bingocall/pkg/ocr"

	"github.com/gin-gonic/gin"
)

const relayTimeout = 2 * time.Minute

type notifier interface {
	Notify(ctx context.Context, text string) error
}

// app holds what the handlers share.
type app struct {
	pipeline *ocr.Pipeline
	store    calibration.Store
	history  *history.Recorder
	relay    notifier
	feed     *feed

	jwtSecret    []byte
	operatorHash []byte
	maxUpload    int64
}

func setupRoutes(r *gin.Engine, a *app) {
	r.GET("/health", a.healthHandler)
	r.POST("/login", a.loginHandler)
	r.GET("/ws", a.feed.handle)

	api := r.Group("/api")
	api.POST("/detect", a.detectHandler)
	api.GET("/calibration", a.getCalibrationHandler)
	api.GET("/draws", a.listDrawsHandler)

	op := api.Group("")
	op.Use(a.requireOperator())
	op.POST("/calibration", a.saveCalibrationHandler)
	op.POST("/calibration/measure", a.measureHandler)
}

func (a *app) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"calibration":  a.store.Load(),
		"history":      a.history != nil,
		"relay":        a.relay != nil,
		"feed_clients": a.feed.count(),
	})
}

type detectResponse struct {
	Detected bool                    `json:"detected"`
	ID       string                  `json:"id,omitempty"`
	Number   string                  `json:"number,omitempty"`
	Digits   string                  `json:"digits,omitempty"`
	Variant  string                  `json:"variant,omitempty"`
	Region   calibration.Calibration `json:"region"`
	Box      [4]int                  `json:"box"`
	Notify   bool                    `json:"notify_queued,omitempty"`
}

// detectHandler reads the called number from an uploaded screenshot.
func (a *app) detectHandler(c *gin.Context) {
	data, name, ok := a.readUpload(c)
	if !ok {
		return
	}
	override, err := overrideFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cal := a.store.Load()
	if override != nil {
		cal = *override
	}

	res, err := a.pipeline.Detect(c.Request.Context(), data, &cal)
	if err != nil {
		status := detectStatus(err)
		log.Printf("DETECT %s failed (%d): %v", name, status, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	resp := detectResponse{
		Detected: res.Detected(),
		ID:       res.ID,
		Region:   cal,
		Box:      [4]int{res.Region.Min.X, res.Region.Min.Y, res.Region.Max.X, res.Region.Max.Y},
	}
	if !res.Detected() {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Number, resp.Digits, resp.Variant = res.Label, res.Digits, res.Variant
	resp.Notify = c.PostForm("notify") == "1" && a.relay != nil
	a.publish(c.Request.Context(), res, "upload", name, resp.Notify)
	c.JSON(http.StatusOK, resp)
}

func detectStatus(err error) int {
	switch {
	case errors.Is(err, ocr.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, ocr.ErrEmptyRegion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ocr.ErrRecognize):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// publish records a detection, pushes it to the live feed and, when asked,
// relays the label in the background.
func (a *app) publish(ctx context.Context, res ocr.Result, source, fileName string, notify bool) {
	d := history.FromResult(res, source, fileName)
	if err := a.history.Record(ctx, &d); err != nil {
		log.Printf("DETECT record: %v", err)
	}
	log.Printf("DETECT %s -> %s (variant=%s source=%s)", fileName, res.Label, res.Variant, source)
	a.feed.broadcast(newDrawMessage(d, time.Now()))
	if !notify {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
		defer cancel()
		if err := a.relay.Notify(ctx, d.Label); err != nil {
			log.Printf("RELAY %s failed: %v", d.Label, err)
			return
		}
		if err := a.history.MarkNotified(ctx, d.ID); err != nil {
			log.Printf("RELAY mark notified: %v", err)
		}
	}()
}

// readUpload returns the multipart "file" contents, writing the error
// response itself when it fails.
func (a *app) readUpload(c *gin.Context) ([]byte, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return nil, "", false
	}
	if a.maxUpload > 0 && fh.Size > a.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file too large (max %d bytes)", a.maxUpload)})
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return nil, "", false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return nil, "", false
	}
	return data, fh.Filename, true
}

// overrideFromForm reads the optional top/bottom/left/right fields. Either
// all four are present or none.
func overrideFromForm(c *gin.Context) (*calibration.Calibration, error) {
	keys := []string{"top", "bottom", "left", "right"}
	var vals [4]float64
	present := 0
	for i, k := range keys {
		raw, ok := c.GetPostForm(k)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", k, raw)
		}
		vals[i] = v
		present++
	}
	switch present {
	case 0:
		return nil, nil
	case len(keys):
		return &calibration.Calibration{Top: vals[0], Bottom: vals[1], Left: vals[2], Right: vals[3]}, nil
	}
	return nil, errors.New("override needs all of top, bottom, left and right")
}

func (a *app) getCalibrationHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Load())
}

func (a *app) saveCalibrationHandler(c *gin.Context) {
	var req struct {
		Top    *float64 `json:"top" binding:"required"`
		Bottom *float64 `json:"bottom" binding:"required"`
		Left   *float64 `json:"left" binding:"required"`
		Right  *float64 `json:"right" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cal := calibration.Calibration{Top: *req.Top, Bottom: *req.Bottom, Left: *req.Left, Right: *req.Right}
	if !a.saveCalibration(c, cal) {
		return
	}
	c.JSON(http.StatusOK, cal)
}

// saveCalibration validates and persists cal, writing the error response on failure.
func (a *app) saveCalibration(c *gin.Context, cal calibration.Calibration) bool {
	if err := cal.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := a.store.Save(cal); err != nil {
		log.Printf("calibration save failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save calibration"})
		return false
	}
	log.Printf("calibration updated: %+v", cal)
	return true
}

// measureHandler converts a pixel rectangle selected on an uploaded
// screenshot into calibration fractions, optionally saving them.
func (a *app) measureHandler(c *gin.Context) {
	data, _, ok := a.readUpload(c)
	if !ok {
		return
	}
	var pts [4]int
	for i, k := range []string{"x1", "y1", "x2", "y2"} {
		v, err := strconv.Atoi(c.PostForm(k))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", k)})
			return
		}
		pts[i] = v
	}
	img, err := ocr.DecodeImage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	size := img.Bounds().Size()
	cal, err := calibration.FromSelection(size, image.Rect(pts[0], pts[1], pts[2], pts[3]))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	saved := false
	if c.PostForm("save") == "1" {
		if !a.saveCalibration(c, cal) {
			return
		}
		saved = true
	}
	c.JSON(http.StatusOK, gin.H{
		"calibration": cal,
		"image":       gin.H{"width": size.X, "height": size.Y},
		"saved":       saved,
	})
}

func (a *app) listDrawsHandler(c *gin.Context) {
	if a.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "draw history disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := a.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}
