package semantic

import (
	"fmt"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// validateMethod validates a single ApiMethod's grammar: its data source
// reference (if any), its return type, and each parameter's type.
// Grounded on the `validate_methods` fn.
func validateMethod(namespace, methodName string, method cidl.ApiMethod, ast *cidl.CloesceAst) error {
	if methodName != method.Name {
		return cerr.ErrInvalidMapping.New(fmt.Sprintf("%s methods[%s] has name %s", namespace, methodName, method.Name))
	}

	if method.DataSource != nil {
		ds := *method.DataSource
		if method.IsStatic {
			return cerr.ErrInvalidDataSourceReference.New(
				fmt.Sprintf("%s.%s has a data source but is a static method.", namespace, method.Name))
		}

		model, ok := ast.Models.Get(namespace)
		if !ok {
			return cerr.ErrInvalidModelReference.New(fmt.Sprintf(
				"%s.%s references a data source on an unknown model %s", namespace, method.Name, namespace))
		}

		if _, ok := model.DataSources.Get(ds); !ok {
			return cerr.ErrUnknownDataSourceReference.New(fmt.Sprintf(
				"%s.%s references an unknown data source %s on model %s", namespace, method.Name, ds, namespace))
		}
	}

	root := method.ReturnType.RootType()
	switch root.Kind {
	case cidl.Object, cidl.Partial:
		if !isValidObjectRef(ast, root.Name) {
			return cerr.ErrUnknownObject.New(fmt.Sprintf("%s.%s", namespace, method.Name))
		}
	case cidl.DataSource:
		if !isValidDataSourceRef(ast, root.Name) {
			return cerr.ErrUnknownDataSourceReference.New(fmt.Sprintf("%s.%s", namespace, method.Name))
		}
	case cidl.Inject:
		return cerr.ErrUnexpectedInject.New(fmt.Sprintf("%s.%s => %s?", namespace, method.Name, root.Name))
	case cidl.Stream:
		isBareStream := method.ReturnType.Kind == cidl.Stream
		isStreamResult := method.ReturnType.Kind == cidl.HttpResult && method.ReturnType.Of.Kind == cidl.Stream
		if !isBareStream && !isStreamResult {
			return cerr.ErrInvalidStream.New(fmt.Sprintf("%s.%s", namespace, method.Name))
		}
	}

	for _, param := range method.Parameters {
		if param.Type.Kind == cidl.DataSource {
			if !isValidDataSourceRef(ast, param.Type.Name) {
				return cerr.ErrInvalidModelReference.New(fmt.Sprintf(
					"%s.%s data source references %s", namespace, method.Name, param.Type.Name))
			}
			continue
		}

		if cidl.Contains(param.Type, func(t cidl.CidlType) bool { return t.Kind == cidl.HttpResult }) {
			return cerr.ErrNotYetSupported.New(fmt.Sprintf(
				"requests currently do not support HttpResult parameters %s.%s.%s", namespace, method.Name, param.Name))
		}

		if method.HttpVerb == cidl.Get && cidl.Contains(param.Type, func(t cidl.CidlType) bool { return t.Kind == cidl.KvObject }) {
			return cerr.ErrNotYetSupported.New(fmt.Sprintf(
				"GET requests currently do not support KV Object parameters %s.%s.%s", namespace, method.Name, param.Name))
		}

		rootType := param.Type.RootType()
		switch rootType.Kind {
		case cidl.Void:
			return cerr.ErrUnexpectedVoid.New(fmt.Sprintf("%s.%s.%s", namespace, method.Name, param.Name))
		case cidl.Object, cidl.Partial:
			if !isValidObjectRef(ast, rootType.Name) {
				return cerr.ErrUnknownObject.New(fmt.Sprintf("%s.%s.%s", namespace, method.Name, param.Name))
			}
			if method.HttpVerb == cidl.Get {
				return cerr.ErrNotYetSupported.New(fmt.Sprintf(
					"GET requests currently do not support object parameters %s.%s.%s", namespace, method.Name, param.Name))
			}
		case cidl.R2Object:
			if method.HttpVerb == cidl.Get {
				return cerr.ErrNotYetSupported.New(fmt.Sprintf(
					"GET requests currently do not support R2Object parameters %s.%s.%s", namespace, method.Name, param.Name))
			}
		case cidl.DataSource:
			if _, ok := ast.Models.Get(rootType.Name); !ok {
				return cerr.ErrInvalidModelReference.New(fmt.Sprintf(
					"%s.%s data source references %s", namespace, method.Name, rootType.Name))
			}
		case cidl.Stream:
			required := 0
			for _, p := range method.Parameters {
				if p.Type.Kind != cidl.Inject && p.Type.Kind != cidl.DataSource {
					required++
				}
			}
			if required != 1 || param.Type.Kind != cidl.Stream {
				return cerr.ErrInvalidStream.New(fmt.Sprintf("%s.%s", namespace, method.Name))
			}
		}
	}

	return nil
}
