package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// upload stores every multipart "files" part under a generated name.
// Parts that cannot be saved are skipped.
func (h *Handler) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "code": "invalid_body", "details": err.Error()})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.respondError(c, fmt.Errorf("failed to prepare upload directory: %w", err))
		return
	}

	urls := []string{}
	for _, file := range form.File["files"] {
		name := uuid.New().String()
		name = strings.ReplaceAll(name, "-", "") + strings.ToLower(filepath.Ext(file.Filename))

		if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
			h.logger.Warn("Skipping upload", zap.String("filename", file.Filename), zap.Error(err))
			continue
		}
		urls = append(urls, "/uploads/"+name)
	}

	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

// testNotify sends a ping through the webhook synchronously
func (h *Handler) testNotify(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if h.webhook == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	if err := h.webhook.Send(ctx, "Ping from server"); err != nil {
		h.logger.Warn("Test notification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

var exportHeaders = []string{
	"ID", "Product", "Color", "Size", "Amount", "Name", "Phone", "Gov", "City",
	"Address", "Price", "Shipping", "Total", "Addition", "Date",
}

// exportOrders downloads every order as a spreadsheet
func (h *Handler) exportOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		h.respondError(c, fmt.Errorf("failed to create sheet: %w", err))
		return
	}

	headerRow := sheet.AddRow()
	for _, title := range exportHeaders {
		headerRow.AddCell().SetValue(title)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.Product)
		row.AddCell().SetValue(o.Color)
		row.AddCell().SetValue(o.Size)
		row.AddCell().SetValue(o.Amount)
		row.AddCell().SetValue(o.Name)
		row.AddCell().SetValue(o.Phone)
		row.AddCell().SetValue(o.Gov)
		row.AddCell().SetValue(o.City)
		row.AddCell().SetValue(o.Address)
		row.AddCell().SetValue(o.Price.InexactFloat64())
		row.AddCell().SetValue(o.Shipping.InexactFloat64())
		row.AddCell().SetValue(o.Total.InexactFloat64())
		row.AddCell().SetValue(o.Addition)
		row.AddCell().SetValue(o.Date)
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := file.Write(c.Writer); err != nil {
		h.logger.Error("Failed to write orders export", zap.Error(err))
	}
}

// streamOrders upgrades to a websocket receiving live order events
func (h *Handler) streamOrders(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed disabled", "code": "unavailable"})
		return
	}
	h.hub.ServeHTTP(c.Writer, c.Request)
}
