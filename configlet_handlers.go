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
	"github.com/netauto/configlet-builder/pkg/configlets"
)

func postConfiglet(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newConfiglet configlets.Configlet

		if err := render.DecodeJSON(r.Body, &newConfiglet); err != nil {
			log.Error().Err(err).Msg("Error decoding request body")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if newConfiglet.Name == "" {
			http.Error(w, "configlet name is required", http.StatusBadRequest)
			return
		}

		if _, err := store.LookupConfigletByName(newConfiglet.Name); err == nil {
			http.Error(w, "configlet with the same name already exists", http.StatusConflict)
			return
		}

		newConfiglet.ID = uuid.New()
		newConfiglet.Created = time.Now()
		newConfiglet.Updated = newConfiglet.Created
		if err := store.SaveConfiglet(newConfiglet.ID, newConfiglet); err != nil {
			log.Error().Err(err).Msg("Error saving configlet")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().
			Str("configlet_id", newConfiglet.ID.String()).
			Str("name", newConfiglet.Name).
			Int("config_bytes", len(newConfiglet.Config)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Configlet created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, newConfiglet)
	}
}

func getConfiglet(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configletID, err := uuid.Parse(chi.URLParam(r, "configletID"))
		if err != nil {
			http.Error(w, "malformed configlet ID", http.StatusBadRequest)
			return
		}
		configlet, err := store.GetConfiglet(configletID)
		if err != nil {
			http.Error(w, "configlet not found", http.StatusNotFound)
			return
		}
		render.JSON(w, r, configlet)
	}
}

func searchConfiglets(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "name query parameter is required", http.StatusBadRequest)
			return
		}
		configlet, err := store.LookupConfigletByName(name)
		if err != nil {
			http.Error(w, "configlet not found", http.StatusNotFound)
			return
		}
		render.JSON(w, r, configlet)
	}
}

func updateConfiglet(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configletID, err := uuid.Parse(chi.URLParam(r, "configletID"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, "malformed configlet ID")
			return
		}

		var update configlets.Configlet
		if err := render.DecodeJSON(r.Body, &update); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, err.Error())
			return
		}

		existing, err := store.GetConfiglet(configletID)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, "configlet not found")
			return
		}

		update.ID = configletID
		update.Created = existing.Created
		update.Updated = time.Now()
		if err := store.UpdateConfiglet(configletID, update); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, err.Error())
			return
		}

		log.Info().
			Str("configlet_id", update.ID.String()).
			Str("name", update.Name).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Configlet updated")

		render.JSON(w, r, update)
	}
}

func deleteConfiglet(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configletID, err := uuid.Parse(chi.URLParam(r, "configletID"))
		if err != nil {
			http.Error(w, "malformed configlet ID", http.StatusBadRequest)
			return
		}
		if err := store.DeleteConfiglet(configletID); err != nil {
			http.Error(w, "configlet not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
