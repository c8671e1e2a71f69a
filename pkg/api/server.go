// Package api provides the REST API server for lily2strudel
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/strudelkit/lily2strudel/pkg/converter"
	"github.com/strudelkit/lily2strudel/pkg/score"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Lily2Strudel API
// @version 1.0
// @description API for converting LilyPond notation and bar sequences to Strudel patterns
// @host localhost:8080
// @BasePath /api/v1

// ServerConfig holds server-wide conversion settings.
type ServerConfig struct {
	Libraries []string // pattern library roots for sequence input
}

var config ServerConfig

// StartServer starts the API server on the specified port
func StartServer(port int, cfg ServerConfig) error {
	config = cfg
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/ly2strudel", handleLyToScript)
		v1.POST("/convert/ly2html", handleLyToHTML)
		v1.POST("/convert/ly2midi", handleLyToMIDI)
		v1.POST("/convert/seq2ly", handleSeqToLy)
		v1.POST("/convert/seq2strudel", handleSeqToScript)
		v1.POST("/convert/seq2html", handleSeqToHTML)
		v1.GET("/formats", listFormats)
		v1.GET("/drums", listDrums)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lily2strudel",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats and conversion paths
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"lilypond", "sequence", "script", "html", "midi"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listDrums godoc
// @Summary List recognized drum names
// @Description Returns the LilyPond drum names recognized in \drummode input and their Strudel sound names
// @Tags info
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/drums [get]
func listDrums(c *gin.Context) {
	names := make(map[string]string, len(score.KnownDrumNames))
	for _, name := range score.KnownDrumNames {
		names[name] = score.StrudelDrumName(name)
	}
	c.JSON(http.StatusOK, gin.H{"drums": names})
}

// handleLyToScript godoc
// @Summary Convert LilyPond to a Strudel script
// @Description Upload a .ly file and receive a .js Strudel script
// @Tags convert
// @Accept multipart/form-data
// @Produce application/javascript
// @Param file formData file true "LilyPond file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/ly2strudel [post]
func handleLyToScript(c *gin.Context) {
	handleConversion(c, "ly2strudel")
}

// handleLyToHTML godoc
// @Summary Convert LilyPond to a strudel-repl embed page
// @Description Upload a .ly file and receive a self-contained HTML page
// @Tags convert
// @Accept multipart/form-data
// @Produce text/html
// @Param file formData file true "LilyPond file to convert"
// @Param title query string false "Page title"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/ly2html [post]
func handleLyToHTML(c *gin.Context) {
	handleConversion(c, "ly2html")
}

// handleLyToMIDI godoc
// @Summary Convert LilyPond to MIDI
// @Description Upload a .ly file and receive a standard MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "LilyPond file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/ly2midi [post]
func handleLyToMIDI(c *gin.Context) {
	handleConversion(c, "ly2midi")
}

// handleSeqToLy godoc
// @Summary Convert a bar sequence to LilyPond
// @Description Upload a .yml sequence and receive a .ly score
// @Tags convert
// @Accept multipart/form-data
// @Produce text/plain
// @Param file formData file true "Sequence file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/seq2ly [post]
func handleSeqToLy(c *gin.Context) {
	handleConversion(c, "seq2ly")
}

// handleSeqToScript godoc
// @Summary Convert a bar sequence to a Strudel script
// @Description Upload a .yml sequence and receive a .js Strudel script
// @Tags convert
// @Accept multipart/form-data
// @Produce application/javascript
// @Param file formData file true "Sequence file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/seq2strudel [post]
func handleSeqToScript(c *gin.Context) {
	handleConversion(c, "seq2strudel")
}

// handleSeqToHTML godoc
// @Summary Convert a bar sequence to a strudel-repl embed page
// @Description Upload a .yml sequence and receive a self-contained HTML page
// @Tags convert
// @Accept multipart/form-data
// @Produce text/html
// @Param file formData file true "Sequence file to convert"
// @Param title query string false "Page title"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/seq2html [post]
func handleSeqToHTML(c *gin.Context) {
	handleConversion(c, "seq2html")
}

func handleConversion(c *gin.Context, conversion string) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	conv := converter.New()
	conv.SetLibraries(config.Libraries)
	if title := c.Query("title"); title != "" {
		conv.SetTitle(title)
	}

	// Uploads have no directory, so includes cannot be resolved relative
	// to the source file.
	const baseDir = "."

	var result []byte
	var outputExt, contentType string

	switch conversion {
	case "ly2strudel":
		result, err = conv.LyToScript(data, baseDir)
		outputExt, contentType = ".js", "application/javascript"
	case "ly2html":
		result, err = conv.LyToHTML(data, baseDir)
		outputExt, contentType = ".html", "text/html"
	case "ly2midi":
		result, err = conv.LyToMIDI(data, baseDir)
		outputExt, contentType = ".mid", "audio/midi"
	case "seq2ly":
		result, err = conv.SeqToLy(data)
		outputExt, contentType = ".ly", "text/plain"
	case "seq2strudel":
		result, err = conv.SeqToScript(data)
		outputExt, contentType = ".js", "application/javascript"
	case "seq2html":
		result, err = conv.SeqToHTML(data)
		outputExt, contentType = ".html", "text/html"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	base := header.Filename
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		base = "converted"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", base+outputExt))
	c.Data(http.StatusOK, contentType, result)
}
