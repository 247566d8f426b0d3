package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/services"
	"github.com/desertthunder/photon/internal/shared"
)

const (
	MsgNotConfigured = "Server not configured. Set PARTICLE_ACCESS_TOKEN and PARTICLE_DEVICE_ID environment variables."
	MsgInvalidJSON   = "Invalid JSON body"
	MsgBodyTooLarge  = "Request body too large"
	MsgUnreachable   = "Failed to reach Particle cloud"
	DiagnosticsHint  = "Set PARTICLE_ACCESS_TOKEN and PARTICLE_DEVICE_ID in the environment or .env file, then restart"

	// MaxBodyBytes caps inbound request bodies.
	MaxBodyBytes = 64 << 10

	colorAlias = "colorValue"
)

// Credentials supplies the device credential on every request.
type Credentials interface {
	Status() shared.CredentialStatus
	Token() (*oauth2.Token, error)
	DeviceID() (string, error)
}

// DeviceCaller sends an encoded command to the device's setState function.
type DeviceCaller interface {
	SetState(ctx context.Context, deviceID string, token *oauth2.Token, arg string) (*services.Response, error)
}

// RelayOptions configures a [RelayHandler].
type RelayOptions struct {
	Credentials Credentials
	Device      DeviceCaller
	Colors      models.ColorModel
	// Motor includes the motor speed in forwarded commands.
	Motor bool
	// Timeout bounds each outbound call. Zero leaves the request context as is.
	Timeout time.Duration
	Logger  *log.Logger
}

// RelayHandler validates dashboard requests and forwards them to the device cloud.
//
// It holds no per-request state; credentials are looked up on every POST.
type RelayHandler struct {
	creds   Credentials
	device  DeviceCaller
	colors  models.ColorModel
	motor   bool
	timeout time.Duration
	logger  *log.Logger
}

// NewRelayHandler creates a [RelayHandler]. A nil color model selects [models.DefaultColorModel].
func NewRelayHandler(opts RelayOptions) (*RelayHandler, error) {
	if opts.Credentials == nil || opts.Device == nil {
		return nil, fmt.Errorf("%w: relay requires credentials and a device client", shared.ErrInvalidConfig)
	}
	colors := opts.Colors
	if colors == nil {
		c, err := models.NewColorModel("")
		if err != nil {
			return nil, err
		}
		colors = c
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &RelayHandler{
		creds:   opts.Credentials,
		device:  opts.Device,
		colors:  colors,
		motor:   opts.Motor,
		timeout: opts.Timeout,
		logger:  logger,
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *RelayHandler) Routes() []string {
	return []string{"/api/photon", "/sync-endpoint"}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.diagnostics(w)
	case http.MethodPost:
		h.relay(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	}
}

func (h *RelayHandler) diagnostics(w http.ResponseWriter) {
	status := h.creds.Status()
	d := models.Diagnostics{
		Configured:  status.Configured(),
		HasToken:    status.HasToken,
		HasDeviceID: status.HasDeviceID,
	}
	if !d.Configured {
		d.Hint = DiagnosticsHint
	}
	WriteJSON(w, http.StatusOK, d)
}

func (h *RelayHandler) relay(w http.ResponseWriter, r *http.Request) {
	if !h.creds.Status().Configured() {
		WriteError(w, http.StatusInternalServerError, MsgNotConfigured)
		return
	}
	token, err := h.creds.Token()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, MsgNotConfigured)
		return
	}
	deviceID, err := h.creds.DeviceID()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, MsgNotConfigured)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
			return
		}
		WriteError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	obj, err := decodeObject(data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	if action, err := stringField(obj, "action"); err == nil && action == models.ActionSave {
		arg, err := models.Arg(models.SaveCommand{Save: true})
		if err != nil {
			WriteError(w, http.StatusBadRequest, MsgInvalidJSON)
			return
		}
		h.forward(w, r, deviceID, token, arg, func(*services.Response) models.RelayReply {
			return models.RelayReply{OK: true, Saved: true}
		})
		return
	}

	cmd, status, msg := h.command(obj)
	if status != 0 {
		WriteError(w, status, msg)
		return
	}

	arg, err := models.Arg(cmd)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	h.forward(w, r, deviceID, token, arg, func(resp *services.Response) models.RelayReply {
		rv, _ := resp.Field("return_value")
		return models.RelayReply{OK: true, ReturnValue: rv}
	})
}

// command maps a validated request body onto the device command. A non-zero status
// reports a validation failure. Each field is read on its own so a wrongly typed
// field is reported by name.
func (h *RelayHandler) command(obj map[string]json.RawMessage) (models.DeviceCommand, int, string) {
	field := h.colors.Field()
	missing := fmt.Sprintf("Missing emotion or %s", field)

	emotion, err := stringField(obj, "emotion")
	if err != nil {
		return models.DeviceCommand{}, http.StatusBadRequest, invalid("emotion")
	}
	if emotion == "" {
		return models.DeviceCommand{}, http.StatusBadRequest, missing
	}

	raw, ok := obj[field]
	if !ok {
		raw = obj[colorAlias]
	}

	cmd := models.DeviceCommand{Emotion: emotion, Personalizing: truthy(obj["personalizing"])}
	if err := h.colors.Encode(raw, &cmd); err != nil {
		if errors.Is(err, models.ErrInvalidColor) {
			return models.DeviceCommand{}, http.StatusBadRequest, invalid(field)
		}
		return models.DeviceCommand{}, http.StatusBadRequest, missing
	}

	track, err := stringField(obj, "selectedTrack")
	if err != nil {
		return models.DeviceCommand{}, http.StatusBadRequest, invalid("selectedTrack")
	}
	cmd.Track = track
	cmd.TrackNumber = models.TrackNumber(cmd.Track)

	speed, err := numberField(obj, "motorSpeed")
	if err != nil {
		return models.DeviceCommand{}, http.StatusBadRequest, invalid("motorSpeed")
	}
	if h.motor {
		if speed == nil {
			d := float64(models.DefaultMotorSpeed)
			speed = &d
		}
		cmd.MotorSpeed = speed
	}
	return cmd, 0, ""
}

func invalid(field string) string {
	return fmt.Sprintf("Invalid %s", field)
}

func (h *RelayHandler) forward(w http.ResponseWriter, r *http.Request, deviceID string, token *oauth2.Token, arg string, onOK func(*services.Response) models.RelayReply) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.logger.Debug("forwarding command", "device", deviceID, "arg", arg)

	resp, err := h.device.SetState(ctx, deviceID, token, arg)
	if err != nil {
		h.logger.Error("particle request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgUnreachable)
		return
	}

	if !resp.OK() {
		msg := resp.StringField("error_description")
		if msg == "" {
			msg = resp.StringField("error")
		}
		if msg == "" {
			msg = fmt.Sprintf("Particle API error (%d)", resp.StatusCode)
		}
		details := json.RawMessage("{}")
		if resp.IsJSON {
			details = json.RawMessage(resp.Body)
		}
		h.logger.Warn("particle rejected command", "status", resp.StatusCode, "error", msg)
		WriteJSON(w, resp.StatusCode, models.RelayReply{Error: msg, Details: details})
		return
	}

	if !resp.IsJSON {
		h.logger.Error("particle returned a non-JSON body", "status", resp.StatusCode)
		WriteError(w, http.StatusInternalServerError, MsgUnreachable)
		return
	}

	WriteJSON(w, http.StatusOK, onOK(resp))
}

// decodeObject parses a JSON object body. A body that is itself a JSON string is
// parsed once more. Empty and null bodies decode to an empty object.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]json.RawMessage{}, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return decodeObject([]byte(s))
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]json.RawMessage{}
	}
	return obj, nil
}

var errFieldType = errors.New("wrong field type")

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// stringField reads an optional string. Absent and null read as "".
func stringField(obj map[string]json.RawMessage, name string) (string, error) {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errFieldType
	}
	return s, nil
}

// numberField reads an optional number. Absent and null read as nil.
func numberField(obj map[string]json.RawMessage, name string) (*float64, error) {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errFieldType
	}
	return &n, nil
}

// truthy reports whether raw is a JSON truthy value: false, 0, "" and null are not.
func truthy(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
