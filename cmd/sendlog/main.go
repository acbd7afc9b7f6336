package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"
)

// sendlog emits simulated agent traffic against a running ingester.
// One datagram carries one syslog-shaped line:
//
//	<13>2026-02-04T09:44:43 localhost auth failed user=admin ip=10.0.0.1 action=login status=fail

func send(conn net.Conn, msg string) {
	line := fmt.Sprintf("<13>%s localhost %s", time.Now().Format("2006-01-02T15:04:05"), msg)
	if _, err := conn.Write([]byte(line)); err != nil {
		fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		return
	}
	fmt.Printf("Sent: %s\n", msg)
}

func simulateBruteForce(conn net.Conn, ip string, fails int) {
	fmt.Println("Simulating brute force: repeated fails then success")
	for i := 0; i < fails; i++ {
		send(conn, fmt.Sprintf("auth failed user=admin ip=%s action=login status=fail", ip))
		time.Sleep(500 * time.Millisecond)
	}
	send(conn, fmt.Sprintf("auth success user=admin ip=%s action=login status=success", ip))
}

func simulateAdminCreate(conn net.Conn) {
	fmt.Println("Simulating off-hours account creation")
	send(conn, "user created user=newadmin ip=10.0.0.50 action=createuser status=success")
}

func simulateBrowse(conn net.Conn) {
	fmt.Println("Simulating a visit to a flagged domain")
	send(conn, `chrome visit user=bob url=http://evil-tracker.example/landing title="Totally Legit Site" action=browse status=success`)
}

func continuousLogs(conn net.Conn, count int) {
	actions := []string{"login", "file_access", "sudo", "ssh"}
	statuses := []string{"success", "fail"}
	ips := []string{"192.168.1.10", "10.0.0.5", "172.16.0.100"}
	users := []string{"user1", "admin", "root"}

	for i := 0; i < count; i++ {
		msg := fmt.Sprintf("auth %s user=%s ip=%s action=%s status=%s",
			actions[rand.Intn(len(actions))],
			users[rand.Intn(len(users))],
			ips[rand.Intn(len(ips))],
			actions[rand.Intn(len(actions))],
			statuses[rand.Intn(len(statuses))],
		)
		send(conn, msg)
		time.Sleep(time.Duration(200+rand.Intn(1300)) * time.Millisecond)
	}
}

func main() {
	addr := flag.String("addr", "127.0.0.1:514", "Ingester UDP address")
	brute := flag.Bool("brute", false, "Run the brute-force simulation")
	admin := flag.Bool("admin", false, "Run the account-creation simulation")
	browse := flag.Bool("browse", false, "Run the flagged-domain browse simulation")
	continuous := flag.Bool("continuous", false, "Emit a burst of random activity")
	fails := flag.Int("fails", 6, "Number of failed logins in the brute-force simulation")
	ip := flag.String("ip", "192.168.1.100", "Source IP for the brute-force simulation")
	count := flag.Int("count", 20, "Number of events in continuous mode")
	flag.Parse()

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	switch {
	case *brute:
		simulateBruteForce(conn, *ip, *fails)
	case *admin:
		simulateAdminCreate(conn)
	case *browse:
		simulateBrowse(conn)
	case *continuous:
		continuousLogs(conn, *count)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
