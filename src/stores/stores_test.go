package stores

import (
	"context"
	"log"
	"testing"

	"sbp/src/coupons"
	"sbp/src/loyalty"
	"sbp/src/pricing"
	"sbp/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type StoreTestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func newMockDB() (*gorm.DB, sqlmock.Sqlmock) {
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

func (s *StoreTestSuite) SetupTest() {
	d, mock := newMockDB()
	s.DB = d
	s.Mock = mock
}

func (s *StoreTestSuite) TearDownTest() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

// An active amount coupon whose global cap is already spent. applies to all
// services so eligibility never short-circuits the cap check.
func exhaustedCouponRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "discount_type", "discount_value", "active",
		"max_redemptions", "max_redemptions_per_user", "min_booking_amount_cents", "applies_to_all_services",
	}).AddRow(int64(7), "SAVE10", "AMOUNT", 1000.0, true, int64(1), nil, int64(0), true)
}

func (s *StoreTestSuite) snapshotInput() (pricing.Input, pricing.Breakdown) {
	in := pricing.Input{UserID: 1, ServiceID: 2}
	bd := pricing.Breakdown{
		BasePriceCents:       10000,
		DiscountedPriceCents: 8000,
		FinalPriceCents:      8000,
		LoyaltyConfig:        loyalty.DefaultConfig(),
	}
	return in, bd
}

func (s *StoreTestSuite) TestCreateWithSnapshotRejectsExhaustedCoupon() {
	in, bd := s.snapshotInput()
	code := "SAVE10"
	couponID := uint(7)
	bd.CouponCode = &code
	bd.CouponID = &couponID
	bd.CouponDiscountCents = 1000
	bd.FinalPriceCents = 7000

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "coupons"`).
		WillReturnRows(exhaustedCouponRows())
	s.Mock.ExpectQuery(`SELECT (.+) FROM "services"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "coupon_redemptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "coupon_redemptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectRollback()

	booking, err := NewBookings(s.DB).CreateWithSnapshot(context.Background(), in, &bd)

	assert.Nil(s.T(), booking)
	var cerr *coupons.Error
	assert.ErrorAs(s.T(), err, &cerr)
	assert.Equal(s.T(), coupons.REDEMPTION_LIMIT_REACHED, cerr.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestCreateWithSnapshotRejectsOverspentPoints() {
	in, bd := s.snapshotInput()
	bd.LoyaltyPointsApplied = 100
	bd.LoyaltyCreditAppliedCents = 100
	bd.FinalPriceCents = 7900

	// 10 qualifying bookings earn 100 points and all 100 were already
	// redeemed by the time this commit takes the row lock.
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loyalty_redeemed_points", "loyalty_credit_cents"}).
			AddRow(int64(1), int64(100), int64(100)))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	s.Mock.ExpectRollback()

	booking, err := NewBookings(s.DB).CreateWithSnapshot(context.Background(), in, &bd)

	assert.Nil(s.T(), booking)
	var perr *pricing.Error
	assert.ErrorAs(s.T(), err, &perr)
	assert.Equal(s.T(), pricing.INSUFFICIENT_POINTS, perr.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestCreateWithSnapshotCommitsPointsWithinBalance() {
	in, bd := s.snapshotInput()
	bd.LoyaltyPointsApplied = 40
	bd.LoyaltyCreditAppliedCents = 40
	bd.FinalPriceCents = 7960

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loyalty_redeemed_points", "loyalty_credit_cents"}).
			AddRow(int64(1), int64(0), int64(0)))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	s.Mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	booking, err := NewBookings(s.DB).CreateWithSnapshot(context.Background(), in, &bd)

	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), booking)
	assert.Equal(s.T(), uint(3), booking.ID)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestCancelReversesRedemptions() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "service_id", "status", "coupon_id",
			"loyalty_points_applied", "loyalty_credit_applied_cents",
		}).AddRow(int64(9), int64(1), int64(2), "pending", int64(7), int64(40), int64(40)))
	s.Mock.ExpectExec(`UPDATE "coupon_redemptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	booking, err := NewBookings(s.DB).Cancel(context.Background(), 9, 1)

	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), booking)
	assert.Equal(s.T(), types.BOOKING_CANCELED, booking.Status)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestCancelRejectsCompletedBooking() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow(int64(9), int64(1), "completed"))
	s.Mock.ExpectRollback()

	booking, err := NewBookings(s.DB).Cancel(context.Background(), 9, 1)

	assert.Nil(s.T(), booking)
	var cerr *coupons.Error
	assert.ErrorAs(s.T(), err, &cerr)
	assert.Equal(s.T(), coupons.INVALID_STATE, cerr.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestApplyToBookingRejectsExhaustedCoupon() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "service_id", "status", "coupon_id", "discounted_price_cents",
		}).AddRow(int64(9), int64(1), int64(2), "pending", nil, int64(8000)))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "coupons"`).
		WillReturnRows(exhaustedCouponRows())
	s.Mock.ExpectQuery(`SELECT (.+) FROM "services"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "coupon_redemptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "coupon_redemptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectRollback()

	booking, err := NewCoupons(s.DB).ApplyToBooking(context.Background(), 9, 1, "save10")

	assert.Nil(s.T(), booking)
	var cerr *coupons.Error
	assert.ErrorAs(s.T(), err, &cerr)
	assert.Equal(s.T(), coupons.REDEMPTION_LIMIT_REACHED, cerr.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestRemoveFromBookingRestoresCaps() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "coupon_id"}).
			AddRow(int64(9), int64(1), "pending", int64(7)))
	s.Mock.ExpectExec(`UPDATE "coupon_redemptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	err := NewCoupons(s.DB).RemoveFromBooking(context.Background(), 9, 1)

	assert.NoError(s.T(), err)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func TestStoreSuiteRun(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
