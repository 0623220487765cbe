package ebm_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEBM(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "EBM Suite")
}
