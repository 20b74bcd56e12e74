package sessions

import "time"

// FlashKind names a one-shot message slot
type FlashKind string

const (
	FlashError           FlashKind = "error"
	FlashErrorPersistent FlashKind = "error_persistent"
	FlashRateLimit       FlashKind = "error_rate_limit"
	FlashSuccess         FlashKind = "success"
)

// Data is everything kept server side for one session
type Data struct {
	AccountID        int64                  `json:"account_id,omitempty"`
	AccountUUID      string                 `json:"account_uuid,omitempty"`
	DisplayName      string                 `json:"display_name,omitempty"`
	IsSuperadmin     bool                   `json:"is_superadmin,omitempty"`
	LastActivity     time.Time              `json:"last_activity,omitempty"`
	CSRFToken        string                 `json:"csrf_token,omitempty"`
	Flashes          map[FlashKind][]string `json:"flashes,omitempty"`
	LastLoginAttempt string                 `json:"last_login_attempt,omitempty"`
}

// Authenticated reports whether an identity is bound
func (d Data) Authenticated() bool {
	return d.AccountID != 0
}

// Clone returns a copy that shares no maps with d
func (d Data) Clone() Data {
	cp := d
	if d.Flashes != nil {
		cp.Flashes = make(map[FlashKind][]string, len(d.Flashes))
		for k, v := range d.Flashes {
			cp.Flashes[k] = append([]string(nil), v...)
		}
	}
	return cp
}

func (d *Data) clearIdentity() {
	d.AccountID = 0
	d.AccountUUID = ""
	d.DisplayName = ""
	d.IsSuperadmin = false
	d.LastActivity = time.Time{}
}
