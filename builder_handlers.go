package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/netauto/configlet-builder/internal/storage"
	"github.com/netauto/configlet-builder/pkg/autodesc"
	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/eventlogger"
	"github.com/netauto/configlet-builder/pkg/oui"
)

// buildAutoDescription runs the description builder over a device's
// stored facts and upserts the resulting configlet under
// <hostname>-auto-description.
func buildAutoDescription(store storage.Storage, ouiCache *oui.Cache, journal *eventlogger.EventLogger, opts ...autodesc.Option) http.HandlerFunc {
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

		genOpts := opts
		if ouiCache != nil {
			if db, err := ouiCache.Database(r.Context()); err == nil {
				genOpts = append(genOpts, autodesc.WithMACResolver(db.Lookup))
			} else {
				// MAC identities degrade to "Unknown" without the registry.
				log.Warn().Err(err).Msg("OUI database unavailable")
			}
		}

		configlet, err := configlets.BuildAutoDescription(device, genOpts...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		now := time.Now()
		configlet.Updated = now
		if existing, err := store.LookupConfigletByName(configlet.Name); err == nil {
			configlet.ID = existing.ID
			configlet.Created = existing.Created
			err = store.UpdateConfiglet(configlet.ID, configlet)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		} else {
			configlet.ID = uuid.New()
			configlet.Created = now
			if err := store.SaveConfiglet(configlet.ID, configlet); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		if journal != nil {
			journal.LogEvent("configlet_built", map[string]interface{}{
				"configlet_id": configlet.ID.String(),
				"name":         configlet.Name,
				"device_id":    deviceID.String(),
				"hostname":     device.Hostname,
			})
		}

		log.Info().
			Str("configlet_id", configlet.ID.String()).
			Str("name", configlet.Name).
			Str("device_id", deviceID.String()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Auto-description configlet built")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, configlet)
	}
}
