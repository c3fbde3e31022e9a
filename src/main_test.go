package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"sbp/src/db"
	"sbp/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

// stubAuthMiddleware stands in for the real bearer-token middleware so
// handler tests do not need to mint tokens or mock the user lookup.
func stubAuthMiddleware(ctx *gin.Context) {
	ctx.Set("id", uint(1))
	ctx.Set("email", "someone@example.com")
	ctx.Set("uid", "test-uid")
	ctx.Set("role", "admin")
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("couponcode", couponCodeValidatorFunc)
	}
}

func (s *TestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) TearDownTest() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func (s *TestSuite) testRouter() *gin.Engine {
	router := setupRouter()
	publicRoutes(router)
	authorized := router.Group(apiPrefix)
	authorized.Use(stubAuthMiddleware)
	{
		pricingHandlers(authorized)
		bookingHandlers(authorized)
		couponHandlers(authorized)
		loyaltyHandlers(authorized)
	}
	return router
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := maintenanceModeMiddleware(setupRouter())
	router.GET("/anything", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/anything", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
}

func serviceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "base_price_cents", "discount_percentage", "currency", "active"}).
		AddRow(1, "Full Detail", "full-detail", 10000, 20.0, "usd", true)
}

func settingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"setting_key", "setting_value", "group"}).
		AddRow("pricing.tax_percentage", []byte("5"), "pricing").
		AddRow("pricing.extra_fee_cents", []byte("200"), "pricing")
}

func (s *TestSuite) TestPricingPreview() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "services"`).WillReturnRows(serviceRows())
	s.Mock.ExpectQuery(`SELECT (.+) FROM "settings"`).WillReturnRows(settingRows())

	router := s.testRouter()
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"service_id": 1}`)
	req, _ := http.NewRequest("POST", apiPrefix+"/pricing/preview", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	raw, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), int64(10000), gjson.GetBytes(raw, "data.base_price_cents").Int())
	assert.Equal(s.T(), int64(8000), gjson.GetBytes(raw, "data.discounted_price_cents").Int())
	assert.Equal(s.T(), int64(8600), gjson.GetBytes(raw, "data.final_price_cents").Int())

	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestPricingPreviewUnknownService() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "services"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := s.testRouter()
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"service_id": 42}`)
	req, _ := http.NewRequest("POST", apiPrefix+"/pricing/preview", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	raw, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "SERVICE_NOT_FOUND", gjson.GetBytes(raw, "code").String())
}

func (s *TestSuite) TestPricingPreviewRejectsBadCouponCode() {
	router := s.testRouter()
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"service_id": 1, "coupon_code": "x"}`)
	req, _ := http.NewRequest("POST", apiPrefix+"/pricing/preview", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestZoneLookupSupported() {
	rows := sqlmock.NewRows([]string{"id", "name", "code", "kind", "center_lat", "center_lng", "radius_m", "active"}).
		AddRow(9, "Downtown", "downtown", "circle", 14.5995, 120.9842, 5000.0, true)
	s.Mock.ExpectQuery(`SELECT (.+) FROM "areas"`).WillReturnRows(rows)

	router := s.testRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", apiPrefix+"/zones/lookup?lat=14.5995&lng=120.9842", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	raw, _ := io.ReadAll(w.Body)
	assert.True(s.T(), gjson.GetBytes(raw, "data.is_supported").Bool())
	assert.Equal(s.T(), "downtown", gjson.GetBytes(raw, "data.zone.code").String())
	assert.Equal(s.T(), "circle", gjson.GetBytes(raw, "data.resolution_method").String())
}

func (s *TestSuite) TestZoneLookupUnsupported() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "areas"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "kind", "center_lat", "center_lng", "radius_m", "active"}))

	router := s.testRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", apiPrefix+"/zones/lookup?lat=40.0&lng=40.0", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	raw, _ := io.ReadAll(w.Body)
	assert.False(s.T(), gjson.GetBytes(raw, "data.is_supported").Bool())
	assert.Equal(s.T(), "none", gjson.GetBytes(raw, "data.resolution_method").String())
}

func (s *TestSuite) TestZoneLookupCacheKeyIsExact() {
	// Two points a few meters apart near a boundary must never share a
	// cached answer.
	a := types.ZoneLookupQuery{Lat: 14.55001, Lng: 121.02001}
	b := types.ZoneLookupQuery{Lat: 14.55004, Lng: 121.02004}
	assert.NotEqual(s.T(), zoneLookupCacheKey(&a), zoneLookupCacheKey(&b))
}

func (s *TestSuite) TestLoyaltySummary() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"setting_key", "setting_value", "group"}))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "loyalty_redeemed_points", "loyalty_credit_cents"}).
			AddRow(1, "someone@example.com", 5, 5))

	router := s.testRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", apiPrefix+"/loyalty/summary", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	raw, _ := io.ReadAll(w.Body)
	// 3 qualifying bookings at the default 10 points each, minus 5 redeemed.
	assert.Equal(s.T(), int64(30), gjson.GetBytes(raw, "data.total_points_earned").Int())
	assert.Equal(s.T(), int64(25), gjson.GetBytes(raw, "data.available_points").Int())
	assert.Equal(s.T(), int64(25), gjson.GetBytes(raw, "data.available_credit_cents").Int())

	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
