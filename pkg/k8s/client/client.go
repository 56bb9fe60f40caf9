package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// userAgent identifies beanctl in API server audit logs.
const userAgent = "beanctl"

var (
	clientOnce   sync.Once
	cachedClient *kubernetes.Clientset
	cachedConfig *rest.Config
	clientErr    error
)

// GetKubeClient returns a singleton Kubernetes client built with automatic
// kubeconfig discovery, creating it on first call.
func GetKubeClient() (*kubernetes.Clientset, *rest.Config, error) {
	clientOnce.Do(func() {
		cachedClient, cachedConfig, clientErr = BuildKubeClient("", "")
	})
	return cachedClient, cachedConfig, clientErr
}

// BuildKubeClient creates a Kubernetes client, bypassing the singleton.
//
// kubeconfig is the path of the kubeconfig file. When empty, the KUBECONFIG
// environment variable is used, then ~/.kube/config if it exists, then the
// in-cluster service account. kubeContext selects a context other than the
// file's current one.
func BuildKubeClient(kubeconfig, kubeContext string) (*kubernetes.Clientset, *rest.Config, error) {
	config, err := restConfig(ResolveKubeconfig(kubeconfig), kubeContext)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build kube config: %w", err)
	}
	config.UserAgent = userAgent

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}

// ResolveKubeconfig returns the kubeconfig path to load, or "" for
// in-cluster configuration.
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	path := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func restConfig(kubeconfig, kubeContext string) (*rest.Config, error) {
	if kubeconfig == "" && kubeContext == "" {
		return clientcmd.BuildConfigFromFlags("", "")
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rules.ExplicitPath = kubeconfig
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
}
