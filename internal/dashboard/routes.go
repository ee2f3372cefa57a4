package dashboard

import (
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/consumption"
	"github.com/Simi445/DMS-K8S/internal/store"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, st *store.Store, samples SampleSource) {
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", handleIndex(st))
	router.GET("/devices", handleDevices(st))
	router.GET("/users", handleUsers(st))
	router.GET("/alerts", handleAlerts(st))
	router.GET("/chats", handleChats(st))
	router.GET("/chats/:id", handleChatDetail(st))
	router.GET("/consumption", handleConsumption(st, samples))

	router.GET("/api/events", handleSSE(st))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func handleIndex(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		devices, err := DeviceSummary(st.DB())
		if err != nil {
			log.Printf("dashboard: device summary: %v", err)
		}
		alerts, err := AlertSummary(st.DB(), 5)
		if err != nil {
			log.Printf("dashboard: alert summary: %v", err)
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":    "overview",
			"devices": devices,
			"alerts":  alerts,
		})
	}
}

func handleDevices(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		devices, err := DeviceSummary(st.DB())
		if err != nil {
			log.Printf("dashboard: device summary: %v", err)
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":    "devices",
			"devices": devices,
		})
	}
}

func handleUsers(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := UserSummary(st.DB())
		if err != nil {
			log.Printf("dashboard: user summary: %v", err)
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":  "users",
			"users": users,
		})
	}
}

func handleAlerts(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := AlertSummary(st.DB(), 100)
		if err != nil {
			log.Printf("dashboard: alert summary: %v", err)
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":   "alerts",
			"alerts": alerts,
		})
	}
}

func handleChats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := SessionList(st.DB())
		if err != nil {
			log.Printf("dashboard: session list: %v", err)
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":     "chats",
			"sessions": sessions,
		})
	}
}

func handleChatDetail(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		lines, err := TranscriptSummary(st.DB(), sessionID)
		if err != nil {
			log.Printf("dashboard: transcript %s: %v", sessionID, err)
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":      "chat-detail",
			"sessionID": sessionID,
			"lines":     lines,
		})
	}
}

// handleConsumption renders the date-scoped hourly chart. Samples come live
// from the portal; without a source or a user the page shows the form only.
func handleConsumption(st *store.Store, samples SampleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse(api.DateLayout, raw)
			if err == nil {
				date = parsed
			}
		}
		style := consumption.StyleLine
		if parsed, err := consumption.ParseStyle(c.DefaultQuery("style", "line")); err == nil {
			style = parsed
		}

		data := gin.H{
			"page":  "consumption",
			"date":  date.Format(api.DateLayout),
			"style": string(style),
		}

		users, err := UserSummary(st.DB())
		if err != nil {
			log.Printf("dashboard: user summary: %v", err)
		}
		data["users"] = users

		userID, err := strconv.ParseInt(c.Query("user"), 10, 64)
		if err == nil && samples != nil {
			raw, err := samples.Consumptions(c.Request.Context(), userID, date)
			if err != nil {
				log.Printf("dashboard: consumptions: %v", err)
				data["fetchError"] = err.Error()
			} else {
				buckets := consumption.HourlyAverages(raw)
				data["userID"] = userID
				data["chart"] = chartSVG(buckets, style)
				data["total"] = consumption.Total(buckets)
			}
		}

		c.HTML(http.StatusOK, "layout.html", data)
	}
}
