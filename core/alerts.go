package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const alertsCollection = "geofence_alerts"

// DefaultAlertType tags alerts that arrive without an explicit category.
const DefaultAlertType = "geofence_crossing"

// SendGeofenceAlert delivers a safety alert over the variant-A transport and
// appends it to the write-only alert log. The log is an audit sink: append
// failures are logged but do not undo a successful send.
func (s *Service) SendGeofenceAlert(ctx context.Context, phone, message, alertType string) error {
	if s.sms == nil {
		return &DeliveryError{Provider: s.opts.Provider, Err: fmt.Errorf("sms transport not configured")}
	}
	local := s.norm.Local(phone)
	text := fmt.Sprintf("%s ALERT: %s. Stay safe and follow bike rental guidelines.",
		strings.ToUpper(s.opts.Brand), message)
	if _, err := s.sms.Send(ctx, local, text); err != nil {
		s.log.Error("geofence alert send failed", zap.String("phone", local), zap.Error(err))
		var de *DeliveryError
		if errors.As(err, &de) {
			return err
		}
		return &DeliveryError{Provider: s.opts.Provider, Err: err}
	}
	if alertType == "" {
		alertType = DefaultAlertType
	}
	if s.docs != nil {
		doc := map[string]any{
			"phone":     s.norm.E164(phone),
			"message":   text,
			"alertType": alertType,
			"sentAt":    time.Now().UTC().Format(time.RFC3339),
			"provider":  s.opts.Provider,
		}
		if err := s.docs.Set(ctx, alertsCollection, uuid.NewString(), doc); err != nil {
			s.log.Warn("alert log append failed", zap.String("phone", local), zap.Error(err))
		}
	}
	return nil
}
