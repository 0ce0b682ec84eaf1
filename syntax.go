package slint

// SyntaxKind identifies one kind of concrete-syntax node. The parser keeps
// going after errors, so any node may carry error children; consumers must
// tolerate missing parts.
type SyntaxKind int

const (
	SyntaxError SyntaxKind = iota
	SyntaxDocument
	SyntaxImport
	SyntaxImportIdentifier
	SyntaxExportsList
	SyntaxExportSpecifier
	SyntaxComponent
	SyntaxGlobal
	SyntaxStructDecl
	SyntaxStructField
	SyntaxElement
	SyntaxSubElement
	SyntaxRepeatedElement
	SyntaxConditionalElement
	SyntaxPropertyDeclaration
	SyntaxCallbackDeclaration
	SyntaxCallbackConnection
	SyntaxBinding
	SyntaxTwoWayBinding
	SyntaxPropertyAnimation
	SyntaxStates
	SyntaxState
	SyntaxStatePropertyChange
	SyntaxTransitions
	SyntaxTransition
	SyntaxQualifiedName
	SyntaxTypeName
	SyntaxExpression
	SyntaxCodeBlock
	SyntaxReturnStatement
	SyntaxSelfAssignment
	SyntaxConditionalExpression
	SyntaxBinaryExpression
	SyntaxUnaryExpression
	SyntaxFunctionCall
	SyntaxMemberAccess
	SyntaxArrayLiteral
	SyntaxObjectLiteral
	SyntaxObjectMember
	SyntaxNumberLiteral
	SyntaxStringLiteral
	SyntaxColorLiteral
	SyntaxBoolLiteral
	SyntaxIdentifier
	SyntaxParenthesized
	SyntaxModifier
	SyntaxReturnType
)

var syntaxKindNames = map[SyntaxKind]string{
	SyntaxError:                  "Error",
	SyntaxDocument:               "Document",
	SyntaxImport:                 "Import",
	SyntaxImportIdentifier:       "ImportIdentifier",
	SyntaxExportsList:            "ExportsList",
	SyntaxExportSpecifier:        "ExportSpecifier",
	SyntaxComponent:              "Component",
	SyntaxGlobal:                 "Global",
	SyntaxStructDecl:             "StructDecl",
	SyntaxStructField:            "StructField",
	SyntaxElement:                "Element",
	SyntaxSubElement:             "SubElement",
	SyntaxRepeatedElement:        "RepeatedElement",
	SyntaxConditionalElement:     "ConditionalElement",
	SyntaxPropertyDeclaration:    "PropertyDeclaration",
	SyntaxCallbackDeclaration:    "CallbackDeclaration",
	SyntaxCallbackConnection:     "CallbackConnection",
	SyntaxBinding:                "Binding",
	SyntaxTwoWayBinding:          "TwoWayBinding",
	SyntaxPropertyAnimation:      "PropertyAnimation",
	SyntaxStates:                 "States",
	SyntaxState:                  "State",
	SyntaxStatePropertyChange:    "StatePropertyChange",
	SyntaxTransitions:            "Transitions",
	SyntaxTransition:             "Transition",
	SyntaxQualifiedName:          "QualifiedName",
	SyntaxTypeName:               "TypeName",
	SyntaxExpression:             "Expression",
	SyntaxCodeBlock:              "CodeBlock",
	SyntaxReturnStatement:        "ReturnStatement",
	SyntaxSelfAssignment:         "SelfAssignment",
	SyntaxConditionalExpression:  "ConditionalExpression",
	SyntaxBinaryExpression:       "BinaryExpression",
	SyntaxUnaryExpression:        "UnaryExpression",
	SyntaxFunctionCall:           "FunctionCall",
	SyntaxMemberAccess:           "MemberAccess",
	SyntaxArrayLiteral:           "ArrayLiteral",
	SyntaxObjectLiteral:          "ObjectLiteral",
	SyntaxObjectMember:           "ObjectMember",
	SyntaxNumberLiteral:          "NumberLiteral",
	SyntaxStringLiteral:          "StringLiteral",
	SyntaxColorLiteral:           "ColorLiteral",
	SyntaxBoolLiteral:            "BoolLiteral",
	SyntaxIdentifier:             "Identifier",
	SyntaxParenthesized:          "Parenthesized",
	SyntaxModifier:               "Modifier",
	SyntaxReturnType:             "ReturnType",
}

func (k SyntaxKind) String() string {
	if s, ok := syntaxKindNames[k]; ok {
		return s
	}
	return "?"
}

// SyntaxNode is one node of the concrete syntax tree. The tree is retained
// for tooling and is read-only after parsing.
type SyntaxNode struct {
	Kind     SyntaxKind    `json:"kind"`
	Text     string        `json:"text,omitempty"`
	Location Location      `json:"location"`
	Children []*SyntaxNode `json:"children,omitempty"`
}

func (n *SyntaxNode) Child(kind SyntaxKind) *SyntaxNode {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

func (n *SyntaxNode) ChildrenOfKind(kind SyntaxKind) []*SyntaxNode {
	var nodes []*SyntaxNode
	for _, c := range n.Children {
		if c.Kind == kind {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

func (n *SyntaxNode) ChildText(kind SyntaxKind) string {
	if c := n.Child(kind); c != nil {
		return c.Text
	}
	return ""
}
