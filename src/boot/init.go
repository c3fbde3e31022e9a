package boot

import (
	"log"
	"time"

	"sbp/src/db"
	"sbp/src/lib"
	"sbp/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Area{},
		&models.Coupon{},
		&models.CouponRedemption{},
		&models.Booking{},
		&models.Setting{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the background sweep that deactivates coupons past
// their validity window. Validation rejects expired coupons regardless, so
// the sweep only keeps listings tidy.
func InitScheduler() {
	id, err := lib.CreateCronJob(DeactivateExpiredCoupons, 1*time.Hour)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *id)
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Printf("Error shutting down Scheduler: %s\n", err.Error())
	}
}

func DeactivateExpiredCoupons() {
	db := db.GetDb()
	res := db.
		Model(&models.Coupon{}).
		Where("active = ? AND valid_until IS NOT NULL AND valid_until < ?", true, time.Now()).
		Update("active", false)
	if res.Error != nil {
		log.Printf("Error deactivating expired coupons: %s\n", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Deactivated %d expired coupons\n", res.RowsAffected)
		go lib.KafkaProduceMessage("sbp-scheduler", "coupons-expired", map[string]any{
			"count": res.RowsAffected,
			"at":    time.Now().Format(time.RFC3339),
		})
	}
}
