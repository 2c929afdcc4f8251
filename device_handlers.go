package main

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/netauto/configlet-builder/internal/discovery"
	"github.com/netauto/configlet-builder/internal/storage"
	"github.com/netauto/configlet-builder/pkg/devices"
)

// Initialized once at router setup from the reflected Device schema.
var deviceSchemaLoader gojsonschema.JSONLoader

// uuidSchemaMapper makes uuid.UUID reflect as the string it marshals to
// on the wire, rather than its underlying [16]byte array.
func uuidSchemaMapper(t reflect.Type) *jsonschema.Schema {
	if t == reflect.TypeOf(uuid.UUID{}) {
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	}
	return nil
}

func initDeviceSchema() {
	reflector := jsonschema.Reflector{Mapper: uuidSchemaMapper}
	schema := reflector.Reflect(&devices.Device{})
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	deviceSchemaLoader = gojsonschema.NewBytesLoader(schemaJSON)
}

type validationError struct {
	Message string `json:"message"`
}

func validateDevice(device devices.Device) []*validationError {
	result, err := gojsonschema.Validate(deviceSchemaLoader, gojsonschema.NewGoLoader(device))
	if err != nil {
		return []*validationError{{Message: err.Error()}}
	}
	var errs []*validationError
	if !result.Valid() {
		for _, desc := range result.Errors() {
			errs = append(errs, &validationError{Message: desc.Description()})
		}
	}
	return errs
}

func postDevice(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newDevice devices.Device

		if err := render.DecodeJSON(r.Body, &newDevice); err != nil {
			log.Error().Err(err).Msg("Error decoding request body")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errs := validateDevice(newDevice); len(errs) > 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errs)
			return
		}

		if _, err := store.LookupDeviceByHostname(newDevice.Hostname); err == nil {
			http.Error(w, "device with the same hostname already exists", http.StatusConflict)
			return
		}

		newDevice.ID = uuid.New()
		if err := store.SaveDevice(newDevice.ID, newDevice); err != nil {
			log.Error().Err(err).Msg("Error saving device")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().
			Str("device_id", newDevice.ID.String()).
			Str("hostname", newDevice.Hostname).
			Str("mac", newDevice.MACAddress).
			Int("interfaces", len(newDevice.Interfaces)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Device created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, newDevice)
	}
}

func getDevice(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
		if err != nil {
			http.Error(w, "malformed device ID", http.StatusBadRequest)
			return
		}
		device, err := store.GetDevice(deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		render.JSON(w, r, device)
	}
}

func searchDevices(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		hostname := query.Get("hostname")
		mac := query.Get("mac")

		found, err := store.SearchDevices(hostname, mac)
		if err != nil {
			log.Error().Err(err).Msg("Error searching devices")
			http.Error(w, "error searching devices", http.StatusInternalServerError)
			return
		}
		render.JSON(w, r, found)
	}
}

func updateDevice(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, "malformed device ID")
			return
		}

		var update devices.Device
		if err := render.DecodeJSON(r.Body, &update); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, err.Error())
			return
		}

		if errs := validateDevice(update); len(errs) > 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errs)
			return
		}

		update.ID = deviceID
		if err := store.UpdateDevice(deviceID, update); err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, "device not found")
			return
		}
		render.JSON(w, r, update)
	}
}

func deleteDevice(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
		if err != nil {
			http.Error(w, "malformed device ID", http.StatusBadRequest)
			return
		}
		if err := store.DeleteDevice(deviceID); err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// deviceFacts is the neighbor-discovery payload merged into a stored
// device before a builder run.
type deviceFacts struct {
	Neighbors map[string][]devices.Neighbor `json:"neighbors,omitempty"`
	MACTable  []devices.MACTableEntry       `json:"mac_table,omitempty"`
}

func postDeviceFacts(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
		if err != nil {
			http.Error(w, "malformed device ID", http.StatusBadRequest)
			return
		}
		device, err := store.GetDevice(deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		var facts deviceFacts
		if err := render.DecodeJSON(r.Body, &facts); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		devices.AttachNeighbors(device.Interfaces, facts.Neighbors)
		devices.AttachMACTable(device.Interfaces, facts.MACTable)
		if err := store.UpdateDevice(deviceID, device); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().
			Str("device_id", deviceID.String()).
			Str("hostname", device.Hostname).
			Int("neighbor_interfaces", len(facts.Neighbors)).
			Int("mac_entries", len(facts.MACTable)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Device facts attached")

		render.JSON(w, r, device)
	}
}

func discoverDeviceInterfaces(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
		if err != nil {
			http.Error(w, "malformed device ID", http.StatusBadRequest)
			return
		}
		device, err := store.GetDevice(deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		var endpoint discovery.RedfishEndpoint
		if err := render.DecodeJSON(r.Body, &endpoint); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if endpoint.Endpoint == "" {
			http.Error(w, "endpoint is required", http.StatusBadRequest)
			return
		}

		discovered, err := discovery.CollectInterfaces(endpoint)
		if err != nil {
			log.Error().Err(err).Str("endpoint", endpoint.Endpoint).Msg("Redfish discovery failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		discovery.MergeInterfaces(&device, discovered)
		if err := store.UpdateDevice(deviceID, device); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		render.JSON(w, r, device)
	}
}
