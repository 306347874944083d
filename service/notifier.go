package service

import (
	"log"
	"sync"
)

// User-facing messages
const (
	LoadFailedMessage        = "Gagal memuat data produk. Periksa koneksi internet Anda."
	BarcodeNotFoundFormat    = "Produk dengan barcode \"%s\" tidak ditemukan."
	CameraUnavailableMessage = "Tidak dapat mengakses kamera. Pastikan izin kamera telah diberikan."
)

// Notifier delivers a blocking alert to the user
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// NotificationQueue keeps alerts until the page drains and shows them
type NotificationQueue struct {
	mu       sync.Mutex
	messages []string
}

// NewNotificationQueue creates an empty NotificationQueue
func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{}
}

// Notify appends an alert
func (q *NotificationQueue) Notify(message string) {
	log.Printf("🔔 Notification: %s", message)
	q.mu.Lock()
	q.messages = append(q.messages, message)
	q.mu.Unlock()
}

// Drain returns the pending alerts in arrival order and clears them
func (q *NotificationQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	messages := q.messages
	q.messages = nil
	if messages == nil {
		return []string{}
	}
	return messages
}

// Pending reports the number of undelivered alerts
func (q *NotificationQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
