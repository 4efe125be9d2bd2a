package constants_test

import (
	"fmt"
	"net"
	"strconv"

	"github.com/agentstation/shotwatch/pkg/constants"
)

// Example shows the fallback bind address.
func Example() {
	fmt.Println(net.JoinHostPort(constants.DefaultHost, strconv.Itoa(constants.DefaultPort)) + constants.StreamPath)
	fmt.Println(constants.DefaultDeleteDelay)

	// Output:
	// 127.0.0.1:7543/map
	// 3s
}
