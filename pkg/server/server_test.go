package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigabridge/gigabridge/pkg/charger"
	"github.com/gigabridge/gigabridge/pkg/types"
	"github.com/gigabridge/gigabridge/pkg/vehicle"
)

type chargerStub struct {
	result types.ChargeResult
	err    error
	lastID string
}

func (c *chargerStub) AuthorizeCharging(ctx context.Context, chargerID string) (types.ChargeResult, error) {
	c.lastID = chargerID
	return c.result, c.err
}

func newTestServer(charger *chargerStub, v *vehicle.Vehicle) *httptest.Server {
	s := &Server{
		charger:  charger,
		vehicle:  v,
		password: "sekrit",
	}
	return httptest.NewServer(s.setupHandler())
}

func get(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestGate(t *testing.T) {
	ts := newTestServer(&chargerStub{}, nil)
	defer ts.Close()

	t.Run("MissingPassword", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/api/charge")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp, _ := get(t, ts.URL+"/api/charge?password=guess")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("HealthzOpen", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHandleCharge(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		stub := &chargerStub{result: types.ChargeResult{ChargerID: "CHG-1", EnergyKWH: 1.441}}
		ts := newTestServer(stub, nil)
		defer ts.Close()

		resp, body := get(t, ts.URL+"/api/charge?password=sekrit&charger=CHG-1")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "CHG-1", stub.lastID)
		assert.Equal(t, "CHG-1", body["chargerId"])
		assert.InDelta(t, 1.441, body["energyKWH"], 0.0001)
	})

	t.Run("MissingChargerID", func(t *testing.T) {
		stub := &chargerStub{err: charger.ErrMissingChargerID}
		ts := newTestServer(stub, nil)
		defer ts.Close()

		resp, _ := get(t, ts.URL+"/api/charge?password=sekrit")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("VendorFailure", func(t *testing.T) {
		stub := &chargerStub{err: charger.ErrTimeout}
		ts := newTestServer(stub, nil)
		defer ts.Close()

		resp, body := get(t, ts.URL+"/api/charge?password=sekrit&charger=CHG-1")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotEmpty(t, body["error"])
	})
}

func TestVehicleEndpoints(t *testing.T) {
	home := types.Location{Latitude: 48.8566, Longitude: 2.3522}
	area := vehicle.HomeArea{Home: home, RadiusMeters: 100}

	t.Run("Location", func(t *testing.T) {
		mock := &vehicle.Mock{Location: home}
		ts := newTestServer(&chargerStub{}, &vehicle.Vehicle{API: mock, Home: area})
		defer ts.Close()

		resp, body := get(t, ts.URL+"/api/vehicle/location?password=sekrit")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.InDelta(t, home.Latitude, body["latitude"], 0.0001)
		assert.InDelta(t, home.Longitude, body["longitude"], 0.0001)
		assert.Equal(t, true, body["home"])
	})

	t.Run("Commands", func(t *testing.T) {
		mock := &vehicle.Mock{}
		ts := newTestServer(&chargerStub{}, &vehicle.Vehicle{API: mock, Home: area})
		defer ts.Close()

		for _, name := range []string{"lock", "unlock", "frunk", "climate", "honk"} {
			resp, body := get(t, ts.URL+"/api/vehicle/"+name+"?password=sekrit")
			assert.Equal(t, http.StatusOK, resp.StatusCode, name)
			assert.Equal(t, true, body["ok"], name)
		}
		assert.Equal(t, []string{"lock", "unlock", "frunk", "climate", "honk"}, mock.Commands)
	})

	t.Run("FlashCount", func(t *testing.T) {
		mock := &vehicle.Mock{}
		ts := newTestServer(&chargerStub{}, &vehicle.Vehicle{API: mock, Home: area})
		defer ts.Close()

		resp, _ := get(t, ts.URL+"/api/vehicle/flash?password=sekrit&count=3")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"flash", "flash", "flash"}, mock.Commands)
	})

	t.Run("FlashBadCount", func(t *testing.T) {
		mock := &vehicle.Mock{}
		ts := newTestServer(&chargerStub{}, &vehicle.Vehicle{API: mock, Home: area})
		defer ts.Close()

		resp, body := get(t, ts.URL+"/api/vehicle/flash?password=sekrit&count=zero")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid count", body["error"])
		assert.Empty(t, mock.Commands)
	})

	t.Run("CommandFailure", func(t *testing.T) {
		mock := &vehicle.Mock{Err: errors.New("asleep")}
		ts := newTestServer(&chargerStub{}, &vehicle.Vehicle{API: mock, Home: area})
		defer ts.Close()

		resp, _ := get(t, ts.URL+"/api/vehicle/honk?password=sekrit")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("NoVehicleConfigured", func(t *testing.T) {
		ts := newTestServer(&chargerStub{}, nil)
		defer ts.Close()

		resp, body := get(t, ts.URL+"/api/vehicle/lock?password=sekrit")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "no vehicle configured", body["error"])
	})
}
