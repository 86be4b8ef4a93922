package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "views":
		viewsCmd(apiURL, args)
	case "chat":
		chatCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Blog Simulator - Development tool for generating blog activity

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Register users who post, comment, like and follow each other
  views     Record anonymous page views for a post
  chat      Send a burst of chat messages to a room
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend URL (default: http://localhost:8080)

EXAMPLES:
  # Three authors, each with one post and activity from the others
  simulator populate --count=3

  # Hit a post ten times (only the first counts within the cooldown)
  simulator views --slug=hello-world --count=10

  # Two users chatting in room "lounge"
  simulator chat --room=lounge --messages=6`)
}

type simUser struct {
	user  *User
	token string
}

func registerUsers(client *APIClient, prefix string, count int) []simUser {
	users := make([]simUser, 0, count)
	for i := 0; i < count; i++ {
		user, token, err := client.RegisterUser(fmt.Sprintf("%s%d", prefix, i+1))
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, count, err)
			continue
		}
		fmt.Printf("  [%d/%d] %s registered\n", i+1, count, user.Username)
		users = append(users, simUser{user: user, token: token})
	}
	return users
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	count := fs.Int("count", 3, "Number of users to create")
	fs.Parse(args)

	if *count < 1 || *count > 50 {
		fmt.Println("Error: --count must be between 1 and 50")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Blog Simulator: Populate ===")
	fmt.Println()

	fmt.Println("Registering users...")
	users := registerUsers(client, "Writer", *count)
	if len(users) == 0 {
		fmt.Println("No users could be created")
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Publishing posts...")
	posts := make([]*Post, len(users))
	for i, u := range users {
		title := fmt.Sprintf("Notes from %s", u.user.Username)
		post, err := client.CreatePost(u.token, title, "# Hello\n\nThis post was generated by the simulator.")
		if err != nil {
			fmt.Printf("  FAILED for %s: %v\n", u.user.Username, err)
			continue
		}
		posts[i] = post
		fmt.Printf("  %s -> /%s\n", u.user.Username, post.Slug)
	}

	fmt.Println()
	fmt.Println("Interacting...")
	for i, u := range users {
		for j, post := range posts {
			if post == nil || i == j {
				continue
			}
			if err := client.Comment(u.token, post.Slug, fmt.Sprintf("Nice one, from %s", u.user.Username)); err != nil {
				fmt.Printf("  Warning: comment failed: %v\n", err)
			}
			if err := client.ToggleLike(u.token, post.Slug); err != nil {
				fmt.Printf("  Warning: like failed: %v\n", err)
			}
			if err := client.ToggleFollow(u.token, users[j].user.Username); err != nil {
				fmt.Printf("  Warning: follow failed: %v\n", err)
			}
		}
	}

	printSiteStats(client)
}

func viewsCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("views", flag.ExitOnError)
	slug := fs.String("slug", "", "Post slug (required)")
	count := fs.Int("count", 10, "Number of views to send")
	fs.Parse(args)

	if *slug == "" {
		fmt.Println("Error: --slug is required")
		fmt.Println("\nUsage: simulator views --slug=hello-world [--count=10]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	counted := 0
	var last *ViewResult
	for i := 0; i < *count; i++ {
		result, err := client.RecordView(*slug)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			continue
		}
		if result.Counted {
			counted++
		}
		last = result
	}

	fmt.Printf("Sent %d views, %d counted\n", *count, counted)
	if last != nil {
		fmt.Printf("Current view count for %s: %d\n", *slug, last.ViewCount)
	}
}

func chatCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	room := fs.String("room", "", "Chat room ID (default room when empty)")
	messages := fs.Int("messages", 6, "Number of messages to send")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Println("Registering chatters...")
	users := registerUsers(client, "Chatter", 2)
	if len(users) == 0 {
		fmt.Println("No users could be created")
		os.Exit(1)
	}

	for i := 0; i < *messages; i++ {
		u := users[i%len(users)]
		content := fmt.Sprintf("message %d from %s", i+1, u.user.Username)
		if err := client.SendChat(u.token, *room, content); err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *messages, err)
			continue
		}
		fmt.Printf("  [%d/%d] %s\n", i+1, *messages, content)
	}
}

func printSiteStats(client *APIClient) {
	stats, err := client.SiteStats()
	if err != nil {
		fmt.Printf("\nFailed to read site stats: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Printf("Site totals: %d posts, %d comments, %d likes, %d visits\n",
		stats.TotalUserPosts, stats.TotalComments, stats.TotalLikes, stats.TotalVisits)
}
