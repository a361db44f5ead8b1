// Seeds the demo dataset: one account per role, a farm with fields and
// crops, and a starting inventory. Safe to re-run, existing users are
// skipped by email.
package main

import (
	"log"
	"os"
	"time"

	"croppo/internal/database"
	"croppo/internal/model"
	"croppo/internal/permission"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type demoUser struct {
	Email    string
	Name     string
	Role     permission.Role
	Password string
}

var demoUsers = []demoUser{
	{Email: "admin@croppo.com", Name: "Farm Administrator", Role: permission.RoleAdmin, Password: "admin123"},
	{Email: "manager@croppo.com", Name: "Farm Manager", Role: permission.RoleManager, Password: "manager123"},
	{Email: "agronomist@croppo.com", Name: "Field Agronomist", Role: permission.RoleAgronomist, Password: "agro123"},
	{Email: "inventory@croppo.com", Name: "Inventory Manager", Role: permission.RoleInventoryManager, Password: "inventory123"},
	{Email: "accountant@croppo.com", Name: "Farm Accountant", Role: permission.RoleAccountant, Password: "accountant123"},
}

func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "croppo")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	seedUsers(db)
	seedFarm(db)
	seedInventory(db)

	log.Println("Seed complete.")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedUsers(db *gorm.DB) {
	for _, du := range demoUsers {
		var existing model.User
		if err := db.First(&existing, "email = ?", du.Email).Error; err == nil {
			log.Printf("User %s already exists, skipping", du.Email)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", du.Email, err)
		}

		user := model.User{
			Email:    du.Email,
			Name:     du.Name,
			Password: string(hashed),
			Role:     string(du.Role),
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create user %s: %v", du.Email, err)
		}
		log.Printf("Created user %s (%s)", du.Email, du.Role)
	}
}

func seedFarm(db *gorm.DB) {
	var count int64
	db.Model(&model.Farm{}).Count(&count)
	if count > 0 {
		log.Println("Farm data already present, skipping")
		return
	}

	farm := model.Farm{Name: "Green Valley Farm", Area: 120.5, Location: "Valencia, Spain"}
	if err := db.Create(&farm).Error; err != nil {
		log.Fatalf("Failed to create farm: %v", err)
	}

	lat, lon := 39.4699, -0.3763
	fields := []model.Field{
		{Name: "North Field", FarmID: farm.ID, Area: 45.0, SoilType: "clay loam", GPSLatitude: &lat, GPSLongitude: &lon},
		{Name: "South Field", FarmID: farm.ID, Area: 38.5, SoilType: "sandy loam"},
	}
	for i := range fields {
		if err := db.Create(&fields[i]).Error; err != nil {
			log.Fatalf("Failed to create field: %v", err)
		}
	}

	planted := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	harvest := planted.AddDate(0, 5, 0)
	crops := []model.Crop{
		{Name: "Wheat", Variety: "Durum", FieldID: fields[0].ID, PlantingDate: &planted, ExpectedHarvestDate: &harvest, GrowthStage: model.GrowthStageVegetative},
		{Name: "Oranges", Variety: "Valencia", FieldID: fields[1].ID, GrowthStage: model.GrowthStageFlowering},
	}
	for i := range crops {
		if err := db.Create(&crops[i]).Error; err != nil {
			log.Fatalf("Failed to create crop: %v", err)
		}
	}

	log.Println("Created demo farm, fields, and crops")
}

func seedInventory(db *gorm.DB) {
	var count int64
	db.Model(&model.InventoryItem{}).Count(&count)
	if count > 0 {
		log.Println("Inventory data already present, skipping")
		return
	}

	items := []model.InventoryItem{
		{Name: "NPK 15-15-15", Category: model.ItemCategoryFertilizer, CurrentStock: 850, Unit: "kg", ReorderThreshold: 200, ReorderQuantity: 500, CostPerUnit: 1.25, Supplier: "AgriSupply Co", Location: "Warehouse A"},
		{Name: "Copper Fungicide", Category: model.ItemCategoryPesticide, CurrentStock: 40, Unit: "L", ReorderThreshold: 15, ReorderQuantity: 50, CostPerUnit: 18.40, Supplier: "CropCare Ltd", Location: "Chemical Store"},
		{Name: "Durum Wheat Seed", Category: model.ItemCategorySeed, CurrentStock: 1200, Unit: "kg", ReorderThreshold: 300, ReorderQuantity: 1000, CostPerUnit: 0.85, Supplier: "SeedWorks", Location: "Warehouse B"},
		{Name: "Diesel", Category: model.ItemCategoryFuel, CurrentStock: 600, Unit: "L", ReorderThreshold: 150, ReorderQuantity: 800, CostPerUnit: 1.60, Supplier: "FuelDirect", Location: "Fuel Tank 1"},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			log.Fatalf("Failed to create inventory item: %v", err)
		}
	}

	log.Println("Created demo inventory")
}
