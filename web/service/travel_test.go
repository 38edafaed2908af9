package service

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"

	"github.com/stretchr/testify/assert"
)

func geocoderStub(t *testing.T, body string, status int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

type uploadFile struct {
	name    string
	content []byte
}

// fileBatch builds real multipart file headers the way a browser upload
// arrives, preserving file order.
func fileBatch(t *testing.T, field string, files []uploadFile) []*multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, file := range files {
		fw, err := w.CreateFormFile(field, file.name)
		assert.NoError(t, err)
		_, err = fw.Write(file.content)
		assert.NoError(t, err)
	}
	assert.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	assert.NoError(t, err)
	return form.File[field]
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestTravelCreateTripGeocodes(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	stub := geocoderStub(t, `[{"lat":"38.7223","lon":"-9.1393"}]`, http.StatusOK)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}

	_, _, err := service.CreateTrip(TripForm{Title: "Lisbon", Address: ""}, nil)
	assert.Equal(t, ErrMissingFields, err)

	trip, batch, err := service.CreateTrip(TripForm{Title: "Lisbon", Address: "Lisbon, Portugal"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, batch.Saved)
	assert.NotNil(t, trip.Lat)
	assert.InDelta(t, 38.7223, *trip.Lat, 0.0001)
	assert.InDelta(t, -9.1393, *trip.Lon, 0.0001)

	pins, err := service.Pins()
	assert.NoError(t, err)
	assert.Len(t, pins, 1)
	assert.Equal(t, trip.Id, pins[0].Id)
}

func TestTravelExplicitCoordinatesWin(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	// Geocoder would say Lisbon; the explicit pair must win without a call
	stub := geocoderStub(t, `[{"lat":"38.7223","lon":"-9.1393"}]`, http.StatusOK)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}

	trip, _, err := service.CreateTrip(TripForm{
		Title:   "Porto",
		Address: "Porto, Portugal",
		Lat:     "41.1579",
		Lon:     "-8.6291",
	}, nil)
	assert.NoError(t, err)
	assert.InDelta(t, 41.1579, *trip.Lat, 0.0001)
	assert.InDelta(t, -8.6291, *trip.Lon, 0.0001)
}

func TestTravelGeocodeFailureMeansNoPin(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	stub := geocoderStub(t, "oops", http.StatusInternalServerError)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}

	trip, _, err := service.CreateTrip(TripForm{Title: "Nowhere", Address: "no such place"}, nil)
	assert.NoError(t, err)
	assert.Nil(t, trip.Lat)
	assert.Nil(t, trip.Lon)

	pins, err := service.Pins()
	assert.NoError(t, err)
	assert.Len(t, pins, 0)
}

func TestTravelGeocodeNoResults(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	stub := geocoderStub(t, `[]`, http.StatusOK)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}

	trip, _, err := service.CreateTrip(TripForm{Title: "Nowhere", Address: "no such place"}, nil)
	assert.NoError(t, err)
	assert.Nil(t, trip.Lat)
}

func TestTravelPhotoBatchSkipsFakes(t *testing.T) {
	setup()
	defer teardown()
	root := t.TempDir()
	t.Setenv("HUB_UPLOAD_ROOT", root)

	stub := geocoderStub(t, `[]`, http.StatusOK)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}

	// A photo.png carrying plain text fails the signature check; the trip
	// itself still commits
	photos := fileBatch(t, "photos", []uploadFile{
		{name: "photo.png", content: []byte("plain text, not an image")},
	})
	trip, batch, err := service.CreateTrip(TripForm{Title: "Lisbon", Address: "Lisbon"}, photos)
	assert.NoError(t, err)
	assert.Equal(t, 0, batch.Saved)
	assert.Equal(t, 1, batch.Skipped)

	db := database.GetDB()
	var tripCount, photoCount int64
	db.Model(model.Trip{}).Count(&tripCount)
	assert.Equal(t, int64(1), tripCount)
	db.Model(model.Photo{}).Count(&photoCount)
	assert.Equal(t, int64(0), photoCount)

	// A mixed batch keeps the good file and skips the bad one
	photos = fileBatch(t, "photos", []uploadFile{
		{name: "real.png", content: pngBytes(t)},
		{name: "fake.jpg", content: []byte("still not an image")},
	})
	_, batch, err = service.UpdateTrip(trip.Id, TripForm{Title: "Lisbon", Address: "Lisbon"}, photos)
	assert.NoError(t, err)
	assert.Equal(t, 1, batch.Saved)
	assert.Equal(t, 1, batch.Skipped)

	var photo model.Photo
	assert.NoError(t, db.Model(model.Photo{}).First(&photo).Error)
	assert.Equal(t, "real.png", photo.OriginalName)

	// Both the original and the derived preview landed on disk
	store := uploadStore()
	for _, rel := range []string{photo.StoredPath, photo.ThumbPath} {
		abs, err := store.Abs(rel)
		assert.NoError(t, err)
		_, err = os.Stat(abs)
		assert.NoError(t, err)
	}
}

func TestTravelComments(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	userService := UserService{}
	ana, _ := userService.CreateUser("ana", "password123")
	ben, _ := userService.CreateUser("ben", "password123")

	stub := geocoderStub(t, `[]`, http.StatusOK)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}
	trip, _, _ := service.CreateTrip(TripForm{Title: "Lisbon", Address: "Lisbon"}, nil)

	_, err := service.AddComment(trip.Id, ana, "")
	assert.Equal(t, ErrEmptyBody, err)

	long := make([]byte, maxCommentLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = service.AddComment(trip.Id, ana, string(long))
	assert.Equal(t, ErrBodyTooLong, err)

	comment, err := service.AddComment(trip.Id, ana, "beautiful city")
	assert.NoError(t, err)

	// Not the author, no travel-edit capability
	assert.Equal(t, ErrForbidden, service.DeleteComment(comment.Id, ben))

	// Travel editors moderate the thread
	userService.SetCapabilities(ben.Id, true, false, false)
	ben, _ = userService.GetUser(ben.Id)
	assert.NoError(t, service.DeleteComment(comment.Id, ben))
}

func TestTravelDeleteTripCascades(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	userService := UserService{}
	ana, _ := userService.CreateUser("ana", "password123")

	stub := geocoderStub(t, `[]`, http.StatusOK)
	service := TravelService{geocodeService: GeocodeService{BaseURL: stub.URL}}
	trip, _, _ := service.CreateTrip(TripForm{Title: "Lisbon", Address: "Lisbon"}, nil)
	comment, _ := service.AddComment(trip.Id, ana, "beautiful city")

	reactionService := ReactionService{}
	reactionService.Toggle(model.KindTrip, comment.Id, ana.Id, "like")

	assert.NoError(t, service.DeleteTrip(trip.Id))

	db := database.GetDB()
	var count int64
	db.Model(model.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(model.CommentReaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(model.Trip{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
