package model

import "time"

// NotifTypeExpiryDigest is the daily reminder listing food about to expire.
const NotifTypeExpiryDigest = "expiry_digest"

type PushSubscription struct {
	ID         int64     `json:"id"`
	KitchenID  string    `json:"kitchen_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
