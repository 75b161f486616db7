package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/murmurhq/murmur/internal/database"
	"github.com/murmurhq/murmur/internal/models"
	"gorm.io/gorm"
)

// moderate is the operator tool for the moderation flags the API never
// exposes: granting and revoking report immunity, and inspecting a post's
// report state.
func main() {
	// Load environment variables
	godotenv.Load()

	postID := flag.String("post", "", "Post ID to operate on")
	grant := flag.Bool("grant-immunity", false, "Make the post immune to report hiding")
	revoke := flag.Bool("revoke-immunity", false, "Remove report immunity from the post")
	flag.Parse()

	if *postID == "" {
		fmt.Println("Usage: moderate -post=<id>                   (inspect)")
		fmt.Println("       moderate -post=<id> -grant-immunity")
		fmt.Println("       moderate -post=<id> -revoke-immunity")
		return
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer database.Close()

	var post models.Post
	if err := database.DB.First(&post, "id = ?", *postID).Error; err != nil {
		fmt.Printf("❌ Post not found: %s\n", *postID)
		return
	}

	switch {
	case *grant && *revoke:
		fmt.Println("❌ Pick one of -grant-immunity or -revoke-immunity")

	case *grant:
		if post.IsImmune {
			fmt.Println("⚠️  Post is already immune")
			return
		}
		if err := setImmunity(*postID, true); err != nil {
			fmt.Printf("❌ Failed to grant immunity: %v\n", err)
			return
		}
		fmt.Printf("✅ Post %s is now immune to report hiding\n", *postID)

	case *revoke:
		if !post.IsImmune {
			fmt.Println("⚠️  Post is not immune")
			return
		}
		if err := setImmunity(*postID, false); err != nil {
			fmt.Printf("❌ Failed to revoke immunity: %v\n", err)
			return
		}
		fmt.Printf("✅ Post %s immunity revoked\n", *postID)

	default:
		var receipts int64
		database.DB.Model(&models.ReportReceipt{}).Where("post_id = ?", *postID).Count(&receipts)

		fmt.Printf("Post:         %s\n", post.ID)
		fmt.Printf("Created:      %s\n", post.CreatedAt)
		fmt.Printf("Report count: %d (receipts: %d)\n", post.ReportCount, receipts)
		fmt.Printf("Immune:       %v\n", post.IsImmune)
	}
}

// setImmunity flips the flag on both materializations atomically
func setImmunity(postID string, immune bool) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("is_immune", immune).Error; err != nil {
			return err
		}
		return tx.Model(&models.PublicPost{}).Where("id = ?", postID).
			Update("is_immune", immune).Error
	})
}
