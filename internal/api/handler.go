package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"linkfly/internal/ads"
	"linkfly/internal/clicks"
	"linkfly/internal/config"
	"linkfly/internal/db"
	"linkfly/internal/device"
	"linkfly/internal/redirect"
	"linkfly/internal/revenue"
	"linkfly/models"
	"linkfly/utils"
)

// LinkSource resolves a short code to its link; in production it is
// the redis-fronted cache.
type LinkSource interface {
	Get(ctx context.Context, shortCode string) (*models.Link, error)
}

// LinkWriter persists newly shortened links.
type LinkWriter interface {
	CreateLink(ctx context.Context, link *models.Link) error
}

// Handler is the redirect orchestrator: it walks each request through
// lookup, validation, classification, the ad gate, and either the
// interstitial or the accounted redirect path.
type Handler struct {
	links    LinkSource
	writer   LinkWriter
	gate     *ads.Gate
	calc     *revenue.Calculator
	recorder *clicks.Recorder
	composer *redirect.Composer
	cfg      *config.Config
}

func NewHandler(links LinkSource, writer LinkWriter, gate *ads.Gate, calc *revenue.Calculator, recorder *clicks.Recorder, composer *redirect.Composer, cfg *config.Config) *Handler {
	return &Handler{
		links:    links,
		writer:   writer,
		gate:     gate,
		calc:     calc,
		recorder: recorder,
		composer: composer,
		cfg:      cfg,
	}
}

// HandleRedirect serves GET /:code.
//
// The request moves through a fixed sequence: lookup, link validation,
// device classification, ad gate, then either the interstitial (no
// accounting) or calculate -> record -> compose -> 302. Recording runs
// before composing, so a malformed destination discovered late leaves
// the already-durable click event and accruals in place.
func (h *Handler) HandleRedirect(c *gin.Context) {
	shortCode := c.Param("code")
	ctx := c.Request.Context()

	link, err := h.links.Get(ctx, shortCode)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			h.renderError(c, http.StatusNotFound, "Link not found", "This short link does not exist.")
			return
		}
		log.Println("link lookup failed:", shortCode, err)
		h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	if !link.IsActive {
		h.renderError(c, http.StatusForbidden, "Link inactive", "This link has been deactivated by its owner.")
		return
	}
	if link.IsExpired(time.Now()) {
		h.renderError(c, http.StatusGone, "Link expired", "This link has expired.")
		return
	}

	profile := device.Classify(
		c.GetHeader("User-Agent"),
		c.GetHeader("Viewport-Width"),
		c.GetHeader("Viewport-Height"),
	)

	if h.gate.ShouldInterpose(profile) {
		h.renderInterstitial(c, link, profile)
		return
	}

	rate := h.calc.Calculate(profile, h.country(c))

	event, err := h.recorder.Record(ctx, link, c.ClientIP(), profile, rate)
	if err != nil {
		switch {
		case errors.Is(err, clicks.ErrLinkInactive):
			h.renderError(c, http.StatusForbidden, "Link inactive", "This link has been deactivated by its owner.")
		case errors.Is(err, clicks.ErrLinkExpired):
			h.renderError(c, http.StatusGone, "Link expired", "This link has expired.")
		default:
			log.Println("failed to record click:", shortCode, err)
			h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		}
		return
	}

	finalURL, err := h.composer.Compose(link.DestinationURL, profile)
	if err != nil {
		// The click above is already committed; accounting stays.
		log.Println("destination rewrite failed after accounting:", shortCode, event.ID, err)
		h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	c.Redirect(http.StatusFound, finalURL)
}

type shortenRequest struct {
	URL                 string `json:"url" binding:"required"`
	Title               string `json:"title"`
	OwnerID             uint   `json:"owner_id"`
	ExpirationInMinutes int    `json:"expiration_in_minutes"`
}

// HandleShorten serves POST /api/shorten. Link creation is a side door
// next to the redirect pipeline; it shares the store and nothing else.
func (h *Handler) HandleShorten(c *gin.Context) {
	var req shortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}

	code, err := utils.CryptoRandomString(utils.ShortCodeLength)
	if err != nil {
		log.Println("failed to generate short code:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}

	link := &models.Link{
		ShortCode:      code,
		DestinationURL: req.URL,
		OwnerID:        req.OwnerID,
		IsActive:       true,
	}
	if req.ExpirationInMinutes > 0 {
		expiresAt := time.Now().Add(time.Duration(req.ExpirationInMinutes) * time.Minute)
		link.ExpiresAt = &expiresAt
	}

	if err := h.writer.CreateLink(c.Request.Context(), link); err != nil {
		log.Println("failed to save link:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save URL"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"short_code": link.ShortCode,
		"short_url":  h.cfg.Server.BaseURL + link.ShortCode,
	})
}

// country prefers the edge-provided geo header and falls back to the
// configured default; revenue lookup tolerates anything.
func (h *Handler) country(c *gin.Context) string {
	if cc := c.GetHeader("CF-IPCountry"); cc != "" {
		return cc
	}
	return h.cfg.Tracking.DefaultCountry
}

func (h *Handler) renderInterstitial(c *gin.Context, link *models.Link, p device.Profile) {
	content := ads.ContentFor(p)
	data := interstitialData{
		Template:    ads.TemplateFor(p),
		ShortCode:   link.ShortCode,
		Countdown:   h.cfg.Ads.CountdownSeconds,
		ContentType: content.Type,
		ContentText: content.Text,
		ContentImg:  content.Image,
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := interstitialTmpl.Execute(c.Writer, data); err != nil {
		log.Println("failed to render interstitial:", err)
	}
}

func (h *Handler) renderError(c *gin.Context, status int, title, message string) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := errorTmpl.Execute(c.Writer, errorPageData{Title: title, Message: message}); err != nil {
		log.Println("failed to render error page:", err)
	}
}
