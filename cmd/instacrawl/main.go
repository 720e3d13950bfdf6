package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	instacrawl "github.com/crawlab/instacrawl"
)

func main() {
	userInfo := flag.String("user", "", "Collect profile info of a username")
	posts := flag.String("posts", "", "Collect timeline posts of a username")
	reels := flag.String("reels", "", "Collect reels of a username")
	tagged := flag.String("tagged", "", "Collect posts a username is tagged in")
	followers := flag.String("followers", "", "Collect followers of a username")
	followings := flag.String("followings", "", "Collect followings of a username")
	followTags := flag.String("following-hashtags", "", "Collect hashtags a username follows")
	likers := flag.String("likers", "", "Collect likers of a post code")
	comments := flag.String("comments", "", "Collect comments of a post code")
	search := flag.String("search", "", "Search users/hashtags/places by keyword")
	hashtag := flag.String("hashtag", "", "Collect top posts of a hashtag")
	music := flag.String("music", "", "Collect posts by audio id")
	friends := flag.String("friendship", "", "Resolve friendship between two usernames, comma separated")
	limit := flag.Int("limit", 100, "Max results to collect (0 collects everything)")
	personalised := flag.Bool("personalised", true, "Personalise search results")
	configPath := flag.String("config", "", "Path to YAML config file")
	cookies := flag.String("cookies", "", "Path to cookies JSON file")
	proxyURL := flag.String("proxy", "", "Proxy URL (http/https/socks5)")
	login := flag.Bool("login", false, "Login with --login-user and --pass, then save cookies")
	loginUser := flag.String("login-user", "", "Instagram username (used with --login)")
	pass := flag.String("pass", "", "Instagram password (used with --login)")
	saveCookies := flag.String("save-cookies", "cookies.json", "Path to save cookies after login")
	headful := flag.Bool("headful", false, "Run a visible browser window")
	flag.Parse()

	cfg, err := instacrawl.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var opts []instacrawl.RodOption
	if *proxyURL != "" {
		opts = append(opts, instacrawl.WithProxy(*proxyURL))
	}
	if *headful {
		opts = append(opts, instacrawl.WithHeadful())
	}
	browser, err := instacrawl.NewRodBrowser(opts...)
	if err != nil {
		log.Fatalf("start browser: %v", err)
	}
	defer browser.Close()

	ctx := context.Background()

	// Login mode: authenticate and save cookies.
	if *login {
		if *loginUser == "" || *pass == "" {
			log.Fatal("--login requires --login-user and --pass")
		}
		fmt.Println("Logging in...")
		if err := browser.Login(ctx, *loginUser, *pass); err != nil {
			log.Fatalf("login: %v", err)
		}
		if err := browser.SaveCookies(*saveCookies); err != nil {
			log.Fatalf("save cookies: %v", err)
		}
		fmt.Printf("Logged in! Cookies saved to %s\n", *saveCookies)
		return
	}

	if *cookies != "" {
		if err := browser.LoginWithCookies(ctx, *cookies); err != nil {
			log.Fatalf("login with cookies: %v", err)
		}
	}

	client := instacrawl.NewClient(browser, instacrawl.WithConfig(cfg))

	var result any
	switch {
	case *userInfo != "":
		result, err = client.CollectUserInfo(ctx, *userInfo)
	case *posts != "":
		result, err = client.CollectPostsOfUser(ctx, *posts, *limit)
	case *reels != "":
		result, err = client.CollectReelsOfUser(ctx, *reels, *limit)
	case *tagged != "":
		result, err = client.CollectTaggedPostsOfUser(ctx, *tagged, *limit)
	case *followers != "":
		result, err = client.CollectFollowersOfUser(ctx, *followers, *limit)
	case *followings != "":
		result, err = client.CollectFollowingsOfUser(ctx, *followings, *limit)
	case *followTags != "":
		result, err = client.CollectFollowingHashtagsOfUser(ctx, *followTags, *limit)
	case *likers != "":
		result, err = client.CollectLikersOfPost(ctx, *likers, *limit)
	case *comments != "":
		result, err = client.CollectCommentsOfPost(ctx, *comments, *limit)
	case *search != "":
		result, err = client.SearchWithKeyword(ctx, *search, *personalised)
	case *hashtag != "":
		result, err = client.CollectTopPostsOfHashtag(ctx, *hashtag)
	case *music != "":
		result, err = client.CollectPostsByMusicID(ctx, *music, *limit)
	case *friends != "":
		parts := strings.SplitN(*friends, ",", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			log.Fatal("--friendship expects two usernames separated by a comma")
		}
		result, err = client.GetFriendshipStatus(ctx, parts[0], parts[1])
	default:
		fmt.Fprintln(os.Stderr, "usage: instacrawl --user <name> | --posts <name> | --comments <code> | ... (see --help)")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("collect: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}
