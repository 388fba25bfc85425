package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Device availability states accepted by the schema.
const (
	DeviceAvailable   = "available"
	DeviceInUse       = "in_use"
	DeviceMaintenance = "maintenance"
	DeviceRetired     = "retired"
)

var deviceFields = []string{"device_id", "name", "device_type", "manufacturer", "model", "sampling_rate", "channels", "specifications", "status"}

// NewDevice is the input for RegisterDevice. Specifications is JSON text.
type NewDevice struct {
	ID             string
	Name           string
	DeviceType     string
	Manufacturer   string
	Model          string
	SamplingRate   int
	Channels       int
	Specifications string
	Status         string
}

func (s *Store) RegisterDevice(ctx context.Context, in NewDevice) (string, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.DeviceType) == "" {
		return "", fmt.Errorf("%w: device name and type are required", ErrInvalid)
	}
	if in.Status == "" {
		in.Status = DeviceAvailable
	}
	switch in.Status {
	case DeviceAvailable, DeviceInUse, DeviceMaintenance, DeviceRetired:
	default:
		return "", fmt.Errorf("%w: unknown device status %q", ErrInvalid, in.Status)
	}
	if in.Specifications == "" {
		in.Specifications = "{}"
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
INSERT INTO device (device_id, name, device_type, manufacturer, model, sampling_rate, channels, specifications, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		in.ID, in.Name, in.DeviceType, nullString(in.Manufacturer), nullString(in.Model), in.SamplingRate, in.Channels, in.Specifications, in.Status)
	if err != nil {
		return "", err
	}
	return in.ID, nil
}

// DeviceSpecifications returns one device or ErrNotFound.
func (s *Store) DeviceSpecifications(ctx context.Context, deviceID string) (Row, error) {
	return s.queryOne(ctx, `
SELECT device_id, name, device_type, manufacturer, model, sampling_rate, channels, specifications, status
FROM device
WHERE device_id = $1`, deviceFields, deviceID)
}

func (s *Store) ListDevices(ctx context.Context) ([]Row, error) {
	return s.Query(ctx, `
SELECT device_id, name, device_type, manufacturer, model, sampling_rate, channels, specifications, status
FROM device
ORDER BY device_type, name`, deviceFields)
}
