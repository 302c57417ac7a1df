package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/citypulse/backend/internal/database"
	"github.com/citypulse/backend/internal/models"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// JSONData represents the structure of the JSON files
type JSONData struct {
	Users []UserData `json:"users"`
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Connect to database
	db, err := database.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations first
	log.Println("Running database migrations...")
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed database with sample data
	log.Println("Seeding database with sample data...")

	// Load and create users from JSON
	if err := seedUsers(db); err != nil {
		log.Printf("Error seeding users: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedUsers(db *gorm.DB) error {
	// Read users JSON file
	usersData, err := os.ReadFile("data/initial-users.json")
	if err != nil {
		return err
	}

	var jsonData JSONData
	if err := json.Unmarshal(usersData, &jsonData); err != nil {
		return err
	}

	for _, userData := range jsonData.Users {
		// Hash password
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password for %s: %v", userData.Email, err)
			continue
		}

		role, ok := models.ParseRole(userData.Role)
		if !ok {
			log.Printf("Unknown role %s for user %s, defaulting to citizen", userData.Role, userData.Email)
			role = models.RoleCitizen
		}

		user := models.User{
			Email:     userData.Email,
			Password:  string(hashedPassword),
			FirstName: userData.FirstName,
			LastName:  userData.LastName,
			Role:      role,
		}

		// Authority and staff accounts are scoped to a department
		if role == models.RoleAuthority || role == models.RoleStaff {
			department, ok := models.ParseDepartment(userData.Department)
			if !ok {
				log.Printf("Invalid department %q for %s, skipping", userData.Department, userData.Email)
				continue
			}
			user.Department = &department
		}

		// Check if user already exists
		var existingUser models.User
		if err := db.Where("email = ?", user.Email).First(&existingUser).Error; err != nil {
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Error creating user %s: %v", user.Email, err)
			} else {
				log.Printf("✅ Created user: %s (%s)", user.Email, user.Role)
			}
		} else {
			log.Printf("⚠️  User already exists: %s", user.Email)
		}
	}

	return nil
}
