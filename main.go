package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/web"
	"github.com/tandr/homehub/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			return
		}
	}
}

func createUser(username string, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	_, err = userService.CreateUser(username, password)
	if err != nil {
		fmt.Println("create user failed:", err)
	} else {
		fmt.Println("user", username, "created")
	}
}

func setPassword(username string, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	err = userService.UpdatePassword(username, password)
	if err != nil {
		fmt.Println("set password failed:", err)
	} else {
		fmt.Println("password updated for", username)
	}
}

func setCapabilities(username string, travelEdit, approveUsers, admin bool) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	user, err := userService.GetUserByName(username)
	if err != nil {
		fmt.Println("unknown user:", username)
		return
	}
	err = userService.SetCapabilities(user.Id, travelEdit, approveUsers, admin)
	if err != nil {
		fmt.Println("set capabilities failed:", err)
	} else {
		fmt.Printf("capabilities updated for %s: travel-edit=%v approve-users=%v admin=%v\n",
			username, travelEdit, approveUsers, admin)
	}
}

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "homehub",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			createUser(username, password)
		},
	}
	createCmd.Flags().String("username", "", "login username")
	createCmd.Flags().String("password", "", "login password")

	var passwordCmd = &cobra.Command{
		Use:   "set-password",
		Short: "Change an account password",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			setPassword(username, password)
		},
	}
	passwordCmd.Flags().String("username", "", "login username")
	passwordCmd.Flags().String("password", "", "new password")

	var capabilityCmd = &cobra.Command{
		Use:   "capability",
		Short: "Set account capabilities",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			travelEdit, _ := cmd.Flags().GetBool("travel-edit")
			approveUsers, _ := cmd.Flags().GetBool("approve-users")
			admin, _ := cmd.Flags().GetBool("admin")
			setCapabilities(username, travelEdit, approveUsers, admin)
		},
	}
	capabilityCmd.Flags().String("username", "", "login username")
	capabilityCmd.Flags().Bool("travel-edit", false, "allow editing the travel log")
	capabilityCmd.Flags().Bool("approve-users", false, "allow deciding registration requests")
	capabilityCmd.Flags().Bool("admin", false, "grant the admin area")

	userCmd.AddCommand(createCmd, passwordCmd, capabilityCmd)

	rootCmd.AddCommand(runCmd, userCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
