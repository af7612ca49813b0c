package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/turntable/internal/game"
	"github.com/playmatatu/turntable/internal/models"
	"github.com/playmatatu/turntable/internal/pool"
)

// TableService is the part of the table manager the HTTP API uses.
type TableService interface {
	CreateTable(pin string) (*game.SeatGrant, error)
	JoinTable(id, pin string) (*game.SeatGrant, error)
	Snapshot(ctx context.Context, id string) (pool.Snapshot, error)
	RecentResults(ctx context.Context, id string, limit int) ([]models.GameResult, error)
	TableCount() int
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// bindPIN reads the optional PIN from the body. An empty body means no PIN.
func bindPIN(c *gin.Context) (string, bool) {
	var req pinRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return "", false
		}
	}
	pin := strings.TrimSpace(req.PIN)
	if pin != "" && (len(pin) != 4 || !isDigits(pin)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be exactly 4 digits"})
		return "", false
	}
	return pin, true
}

// isDigits checks if a string contains only digits
func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// tableError maps manager errors to HTTP responses.
func tableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrTableNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
	case errors.Is(err, game.ErrTableFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Both seats are taken"})
	case errors.Is(err, game.ErrWrongPIN):
		c.JSON(http.StatusForbidden, gin.H{"error": "Wrong PIN"})
	default:
		log.Printf("[API] Table request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// CreateTable racks a new table and seats the caller as player 1.
func CreateTable(svc TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pin, ok := bindPIN(c)
		if !ok {
			return
		}
		grant, err := svc.CreateTable(pin)
		if err != nil {
			tableError(c, err)
			return
		}
		log.Printf("[API] Table %s created (private=%v)", grant.TableID, pin != "")
		c.JSON(http.StatusCreated, grant)
	}
}

// JoinTable takes seat 2 at an existing table.
func JoinTable(svc TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pin, ok := bindPIN(c)
		if !ok {
			return
		}
		grant, err := svc.JoinTable(c.Param("id"), pin)
		if err != nil {
			tableError(c, err)
			return
		}
		c.JSON(http.StatusOK, grant)
	}
}

// GetTableState returns the table's latest snapshot.
func GetTableState(svc TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Snapshot(c.Request.Context(), c.Param("id"))
		if err != nil {
			tableError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// GetTableResults lists recently finished games at a table.
func GetTableResults(svc TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 || limit > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		results, err := svc.RecentResults(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			tableError(c, err)
			return
		}
		if results == nil {
			results = []models.GameResult{}
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
